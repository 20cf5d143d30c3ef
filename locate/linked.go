package locate

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path"
	"strconv"
	"strings"
	"time"
)

const (
	lddName    = "ldd"
	lddTimeout = 2 * time.Second
)

var (
	// ErrBadLocation is returned for an ldd(1) line with a malformed load address.
	ErrBadLocation = errors.New("bad location format")
	// ErrNotLinked is returned by [Linked] when the program does not link the library.
	ErrNotLinked = errors.New("library not linked")

	msgStatic      = []byte("not a dynamic executable")
	msgStaticMusl  = []byte("Not a valid dynamic program")
	lddNotFound    = "not found"
	lddSeparator   = "=>"
	locationPrefix = "(0x"
)

// LddLineError is returned for an ldd(1) line with an unexpected layout.
type LddLineError string

func (e LddLineError) Error() string { return fmt.Sprintf("unexpected ldd line %q", string(e)) }

// A Dependency is one line of ldd(1) output.
type Dependency struct {
	// Name is the soname or pathname of the required object.
	Name string `json:"name" yaml:"name"`
	// Path is the resolved pathname, empty if the object was not found or
	// Name is already a pathname.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	// Location is the load address, zero if the object was not found.
	Location uint64 `json:"location,omitempty" yaml:"location,omitempty"`
}

// Pathname returns the pathname of the object, or the empty string if it was not resolved.
func (d *Dependency) Pathname() string {
	if d.Path != "" {
		return d.Path
	}
	if path.IsAbs(d.Name) {
		return d.Name
	}
	return ""
}

// UnmarshalText parses a line of ldd(1) output.
func (d *Dependency) UnmarshalText(data []byte) error {
	fields := strings.Fields(string(data))
	switch {
	case len(fields) == 2: // /lib64/ld-linux-x86-64.so.2 (0x7f2d1c5a1000)
		d.Name = fields[0]
		return d.location(fields[1])

	case len(fields) == 3 && fields[1] == lddSeparator: // linux-vdso.so.1 =>  (0x7ffd4f3e2000)
		d.Name = fields[0]
		return d.location(fields[2])

	case len(fields) == 4 && fields[1] == lddSeparator && fields[2]+" "+fields[3] == lddNotFound: // libfoo.so.1 => not found
		d.Name = fields[0]
		return nil

	case len(fields) == 4 && fields[1] == lddSeparator: // libsystemd.so.0 => /usr/lib/libsystemd.so.0 (0x7f2d1c400000)
		d.Name, d.Path = fields[0], fields[2]
		if !path.IsAbs(d.Path) {
			return LddLineError(data)
		}
		return d.location(fields[3])

	default:
		return LddLineError(data)
	}
}

func (d *Dependency) location(s string) (err error) {
	if len(s) <= len(locationPrefix) || !strings.HasPrefix(s, locationPrefix) || s[len(s)-1] != ')' {
		return ErrBadLocation
	}
	d.Location, err = strconv.ParseUint(s[len(locationPrefix):len(s)-1], 16, 64)
	if err != nil {
		return ErrBadLocation
	}
	return nil
}

// ParseLdd decodes ldd(1) output. Blank lines are skipped.
func ParseLdd(r io.Reader) ([]Dependency, error) {
	var deps []Dependency
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := bytes.TrimSpace(s.Bytes())
		if len(line) == 0 {
			continue
		}
		var d Dependency
		if err := d.UnmarshalText(line); err != nil {
			return nil, err
		}
		deps = append(deps, d)
	}
	return deps, s.Err()
}

// Linked runs ldd(1) on the program at pathname and returns the dependency
// providing library name, like "systemd" for libsystemd.so.0. A statically
// linked program returns [ErrNotLinked].
//
// ldd(1) may execute the program it inspects and must only be run on
// trusted programs.
func Linked(ctx context.Context, pathname, name string) (*Dependency, error) {
	c, cancel := context.WithTimeout(ctx, lddTimeout)
	defer cancel()

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd := exec.CommandContext(c, lddName, pathname)
	cmd.Stdout, cmd.Stderr = stdout, stderr
	if err := cmd.Run(); err != nil {
		if m := stderr.Bytes(); bytes.Contains(m, msgStatic) || bytes.Contains(m, msgStaticMusl) ||
			bytes.Contains(stdout.Bytes(), msgStatic) {
			return nil, ErrNotLinked
		}
		return nil, err
	}

	deps, err := ParseLdd(stdout)
	if err != nil {
		return nil, err
	}
	return findDependency(deps, name)
}

// findDependency returns the dependency whose soname belongs to library name.
func findDependency(deps []Dependency, name string) (*Dependency, error) {
	prefix := "lib" + name + ".so"
	for i := range deps {
		base := path.Base(deps[i].Name)
		if base == prefix || strings.HasPrefix(base, prefix+".") {
			return &deps[i], nil
		}
	}
	return nil, ErrNotLinked
}
