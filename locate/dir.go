package locate

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"syscall"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNotAbsolute is returned for a relative library directory.
	ErrNotAbsolute = errors.New("not absolute")
	// ErrUnsafePathname is returned for a library directory that cannot be
	// written verbatim into a cgo directive.
	ErrUnsafePathname = errors.New("contains whitespace, control or quote characters")
)

// DirError is returned by [NewDir] and holds the invalid pathname.
type DirError struct {
	Pathname string
	// Err is one of [ErrNotAbsolute] or [ErrUnsafePathname].
	Err error
}

func (e *DirError) Error() string {
	if e.Err == ErrNotAbsolute {
		return fmt.Sprintf("library directory %q is not absolute", e.Pathname)
	}
	return fmt.Sprintf("library directory %q %v", e.Pathname, e.Err)
}
func (e *DirError) Unwrap() error { return e.Err }
func (e *DirError) Is(target error) bool {
	var de *DirError
	if !errors.As(target, &de) {
		return errors.Is(target, syscall.EINVAL)
	}
	return *e == *de
}

// Dir holds a library or header directory checked to be an absolute path.
type Dir struct{ pathname string }

// NewDir checks pathname and returns a new [Dir] if pathname is absolute
// and safe to emit unquoted into generated source. The returned pathname is cleaned.
func NewDir(pathname string) (*Dir, error) {
	if !path.IsAbs(pathname) {
		return nil, &DirError{pathname, ErrNotAbsolute}
	}
	if strings.IndexFunc(pathname, unsafeRune) != -1 {
		return nil, &DirError{pathname, ErrUnsafePathname}
	}
	return &Dir{path.Clean(pathname)}, nil
}

// unsafeRune reports whether r terminates or escapes a #cgo directive.
func unsafeRune(r rune) bool {
	switch r {
	case '"', '\'', '`', '\\', utf8.RuneError:
		return true
	}
	return unicode.IsSpace(r) || unicode.IsControl(r)
}

// MustDir calls [NewDir] and panics on error.
func MustDir(pathname string) *Dir {
	d, err := NewDir(pathname)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Dir) String() string {
	if d.pathname == "" {
		panic("attempted use of zero Dir")
	}
	return d.pathname
}

// Is reports whether d and v hold the same pathname.
func (d *Dir) Is(v *Dir) bool {
	if d == nil || v == nil {
		return d == v
	}
	return d.pathname != "" && d.pathname == v.pathname
}

// Join calls [path.Join] with d as the first element.
func (d *Dir) Join(elem ...string) string { return path.Join(append([]string{d.String()}, elem...)...) }

func (d *Dir) set(pathname string) error {
	v, err := NewDir(pathname)
	if err != nil {
		return err
	}
	*d = *v
	return nil
}

func (d *Dir) MarshalText() ([]byte, error)    { return []byte(d.String()), nil }
func (d *Dir) UnmarshalText(data []byte) error { return d.set(string(data)) }

func (d *Dir) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }
func (d *Dir) UnmarshalJSON(data []byte) error {
	var pathname string
	if err := json.Unmarshal(data, &pathname); err != nil {
		return err
	}
	return d.set(pathname)
}

func (d *Dir) MarshalYAML() (any, error) { return d.String(), nil }
func (d *Dir) UnmarshalYAML(value *yaml.Node) error {
	var pathname string
	if err := value.Decode(&pathname); err != nil {
		return err
	}
	return d.set(pathname)
}

// compactDirs returns dirs without duplicates, keeping the first occurrence
// of every pathname.
func compactDirs(dirs []*Dir) []*Dir {
	seen := make(map[string]struct{}, len(dirs))
	return slices.DeleteFunc(slices.Clone(dirs), func(d *Dir) bool {
		if _, ok := seen[d.String()]; ok {
			return true
		}
		seen[d.String()] = struct{}{}
		return false
	})
}
