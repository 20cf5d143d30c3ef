//go:build !systemd_nobus

package bus

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	// nameMax is the maximum length of a D-Bus name.
	nameMax = 255
)

type (
	// ObjectPath is a valid D-Bus object path.
	ObjectPath string
	// InterfaceName is a valid D-Bus interface name.
	InterfaceName string
	// BusName is a valid unique or well-known D-Bus bus name.
	BusName string
	// MemberName is a valid D-Bus method or signal name.
	MemberName string
)

// NameError is returned when a string is not a valid name of its Kind.
type NameError struct {
	// Kind of name being validated.
	Kind string
	// Name is the offending string.
	Name string
}

func (e *NameError) Error() string { return fmt.Sprintf("invalid %s %q", e.Kind, e.Name) }

// Message returns a user-facing error message.
func (e *NameError) Message() string { return e.Error() }

// NewObjectPath validates s as a D-Bus object path.
func NewObjectPath(s string) (ObjectPath, error) {
	if !dbus.ObjectPath(s).IsValid() {
		return "", &NameError{"object path", s}
	}
	return ObjectPath(s), nil
}

// NewInterfaceName validates s as a D-Bus interface name.
func NewInterfaceName(s string) (InterfaceName, error) {
	if !validDotted(s, false, false) {
		return "", &NameError{"interface name", s}
	}
	return InterfaceName(s), nil
}

// NewBusName validates s as a unique or well-known D-Bus bus name.
func NewBusName(s string) (BusName, error) {
	var valid bool
	if unique, ok := strings.CutPrefix(s, ":"); ok {
		valid = validDotted(unique, true, true)
	} else {
		valid = validDotted(s, false, true)
	}
	if !valid || len(s) > nameMax {
		return "", &NameError{"bus name", s}
	}
	return BusName(s), nil
}

// NewMemberName validates s as a D-Bus member name.
func NewMemberName(s string) (MemberName, error) {
	if s == "" || len(s) > nameMax || !validElement(s, false, false) {
		return "", &NameError{"member name", s}
	}
	return MemberName(s), nil
}

// validDotted returns whether s holds at least two valid elements separated by '.'.
func validDotted(s string, leadingDigit, hyphen bool) bool {
	if len(s) > nameMax {
		return false
	}
	elements := strings.Split(s, ".")
	if len(elements) < 2 {
		return false
	}
	for _, e := range elements {
		if !validElement(e, leadingDigit, hyphen) {
			return false
		}
	}
	return true
}

// validElement returns whether s is a non-empty element of [A-Za-z0-9_].
func validElement(s string, leadingDigit, hyphen bool) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c == '-' && hyphen:
		case c >= '0' && c <= '9' && (i > 0 || leadingDigit):
		default:
			return false
		}
	}
	return true
}
