//go:build !systemd_nojournal

// Package journal submits entries to and reads entries from the systemd journal.
package journal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"git.gensokyo.uk/security/systemd"
)

// Priority is the syslog priority of a journal entry.
type Priority int

const (
	PriEmerg Priority = iota
	PriAlert
	PriCrit
	PriErr
	PriWarning
	PriNotice
	PriInfo
	PriDebug
)

var priorityNames = [...]string{
	PriEmerg:   "emerg",
	PriAlert:   "alert",
	PriCrit:    "crit",
	PriErr:     "err",
	PriWarning: "warning",
	PriNotice:  "notice",
	PriInfo:    "info",
	PriDebug:   "debug",
}

func (p Priority) String() string {
	if p < PriEmerg || p > PriDebug {
		return "priority(" + strconv.Itoa(int(p)) + ")"
	}
	return priorityNames[p]
}

// Field returns the PRIORITY field for p.
func (p Priority) Field() string { return "PRIORITY=" + strconv.Itoa(int(p)) }

// ParsePriority returns the [Priority] named by s, or its numeric value.
func ParsePriority(s string) (Priority, error) {
	for p, name := range priorityNames {
		if s == name {
			return Priority(p), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= int(PriEmerg) && n <= int(PriDebug) {
		return Priority(n), nil
	}
	return -1, fmt.Errorf("invalid priority %q", s)
}

const (
	// fieldNameMax is the longest field name accepted by journald.
	fieldNameMax = 64
)

var (
	// ErrNoFields is returned by [Send] when called with no fields.
	ErrNoFields = errors.New("no fields to send")
)

// FieldError is returned for a field that journald would not accept.
type FieldError string

func (e FieldError) Error() string { return fmt.Sprintf("invalid journal field %q", string(e)) }

// Message returns a user-facing error message.
func (e FieldError) Message() string { return e.Error() }

// checkField returns [FieldError] if the name of a KEY=VALUE field is invalid.
// Names starting with an underscore are reserved for trusted fields.
func checkField(field string) error {
	name, _, ok := strings.Cut(field, "=")
	if !ok || name == "" || len(name) > fieldNameMax || name[0] == '_' || (name[0] >= '0' && name[0] <= '9') {
		return FieldError(field)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') && c != '_' {
			return FieldError(field)
		}
	}
	return nil
}

// Send submits fields as a single journal entry. Every field has the form
// KEY=VALUE, values may hold arbitrary bytes.
func Send(fields ...string) error { return send(direct{}, fields) }

func send(k native, fields []string) error {
	if len(fields) == 0 {
		return ErrNoFields
	}
	for _, f := range fields {
		if err := checkField(f); err != nil {
			return err
		}
	}
	return systemd.Check("sd_journal_sendv", k.sendv(fields))
}

// Print submits a message with priority p, formatted as if by [fmt.Sprintf].
func Print(p Priority, format string, a ...any) error {
	return send(direct{}, []string{p.Field(), "MESSAGE=" + fmt.Sprintf(format, a...)})
}
