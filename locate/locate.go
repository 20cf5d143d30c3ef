// Package locate finds the libsystemd to link against and the parts of it
// a build can rely on.
//
// A library directory override ([EnvLibDir]) is trusted as is, together with
// its library list ([EnvLibs]). Otherwise pkg-config is queried for the
// configured package name. The result is rendered as a cgo preamble by
// [Result.WriteGo] and as build tags by [Result.Tags].
package locate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"text/template"
)

// Source identifies how a [Result] was obtained.
type Source string

const (
	// SourcePkgConfig is a result reported by pkg-config.
	SourcePkgConfig Source = "pkg-config"
	// SourceLibDir is a result built from a library directory override.
	SourceLibDir Source = "lib-dir"
)

// ErrNoLibrary is returned when pkg-config reports no library to link against.
var ErrNoLibrary = errors.New("no library to link against")

// Error is returned when libsystemd cannot be located.
type Error struct {
	// Package is the pkg-config package name, empty for a library directory override.
	Package string
	// Dir is the library directory override, nil when pkg-config was consulted.
	Dir *Dir
	// Err is the underlying error.
	Err error
}

func (e *Error) Error() string {
	if e.Dir != nil {
		return "locate libsystemd in " + e.Dir.String() + ": " + e.Err.Error()
	}
	return "locate pkg-config package " + e.Package + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns a user-facing error message.
func (e *Error) Message() string {
	if e.Dir != nil {
		return fmt.Sprintf("cannot link libsystemd from %s: %v", e.Dir, e.Err)
	}
	return fmt.Sprintf("cannot find package %q with pkg-config (set %s or %s): %v",
		e.Package, EnvPkgName, EnvLibDir, e.Err)
}

// Result describes how to link against libsystemd.
type Result struct {
	Source Source `json:"source" yaml:"source"`
	// Package is the pkg-config package name, empty for [SourceLibDir].
	Package string `json:"package,omitempty" yaml:"package,omitempty"`
	// Version is reported by pkg-config.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// Search are the library search directories.
	Search []*Dir `json:"search" yaml:"search"`
	// Libs are linked in order.
	Libs []Lib `json:"libs" yaml:"libs"`
	// Flags are other linker flags reported by pkg-config.
	Flags []string `json:"flags,omitempty" yaml:"flags,omitempty"`
	// Object is the shared object capabilities were read from, empty if
	// capabilities were inferred.
	Object string `json:"object,omitempty" yaml:"object,omitempty"`

	Capabilities `json:"capabilities" yaml:"capabilities"`
}

// LDFLAGS returns the linker flags for r. Consecutive static libraries are
// enclosed in a single -Bstatic, -Bdynamic pair.
func (r *Result) LDFLAGS() []string {
	flags := make([]string, 0, len(r.Search)+len(r.Libs)+len(r.Flags)+2)
	for _, d := range r.Search {
		flags = append(flags, "-L"+d.String())
	}
	static := false
	for _, lib := range r.Libs {
		if s := lib.Kind == Static; s != static {
			if s {
				flags = append(flags, "-Wl,-Bstatic")
			} else {
				flags = append(flags, "-Wl,-Bdynamic")
			}
			static = s
		}
		flags = append(flags, "-l"+lib.Name)
	}
	if static {
		flags = append(flags, "-Wl,-Bdynamic")
	}
	return append(flags, r.Flags...)
}

var goTemplate = template.Must(template.New("zlink").Parse(`// Code generated by sdlocate; DO NOT EDIT.

{{if .Package}}// Package name: {{.Package}}
{{else}}// Library directory: {{index .Search 0}}
// Libraries: {{.Libs}}
{{end}}// Tags: {{.Tags}}

package {{.Name}}

/*
{{if .Package}}#cgo linux pkg-config: {{.Package}}
{{else}}#cgo linux LDFLAGS: {{.LDFLAGS}}
{{end}}*/
import "C"
`))

// WriteGo writes a Go source file for package name holding the cgo
// directives linking against r.
func (r *Result) WriteGo(w io.Writer, name string) error {
	if r.Source == SourceLibDir && len(r.Search) == 0 {
		return errors.New("library directory result without search directory")
	}
	tags := strings.Join(r.Tags(), " ")
	if tags == "" {
		tags = "none"
	}
	v := struct {
		Name, Package, Libs, Tags, LDFLAGS string
		Search                             []*Dir
	}{name, "", FormatLibs(r.Libs), tags, strings.Join(r.LDFLAGS(), " "), r.Search}
	if r.Source == SourcePkgConfig {
		v.Package = r.Package
	}
	return goTemplate.Execute(w, v)
}

// Locator locates libsystemd.
type Locator struct {
	// PkgConfig is the pathname of pkg-config. The zero value looks it up in PATH.
	PkgConfig string
	// Env is the environment pkg-config runs in. Nil inherits the environment.
	Env []string
}

// Locate locates libsystemd with a zero [Locator].
func Locate(ctx context.Context, c *Config) (*Result, error) {
	return new(Locator).Locate(ctx, c)
}

// Locate locates libsystemd according to c.
func (l *Locator) Locate(ctx context.Context, c *Config) (*Result, error) {
	if c == nil {
		c = new(Config)
	}
	if c.LibDir != nil {
		return fromLibDir(c.LibDir, c.libs()), nil
	}

	name := c.pkgName()
	p := pkgConfig{pathname: l.PkgConfig, env: l.Env}
	if p.pathname == "" {
		s, err := exec.LookPath(pkgConfigName)
		if err != nil {
			return nil, &Error{Package: name, Err: err}
		}
		p.pathname = s
	}
	pkg, err := p.query(ctx, name)
	if err != nil {
		return nil, &Error{Package: name, Err: err}
	}
	r, err := fromPackage(pkg)
	if err != nil {
		return nil, &Error{Package: name, Err: err}
	}
	return r, nil
}

// fromLibDir returns the [Result] of a library directory override. Without
// a readable shared object, journal and bus support are assumed.
func fromLibDir(d *Dir, libs []Lib) *Result {
	r := &Result{Source: SourceLibDir, Search: []*Dir{d}, Libs: libs}
	r.Capabilities = Capabilities{Journal: true, Bus: true}
	for _, lib := range libs {
		if lib.Kind != Dynamic {
			continue
		}
		if pathname, err := FindShared(r.Search, lib.Name); err == nil {
			if c, err := Symbols(pathname); err == nil {
				r.Object, r.Capabilities = pathname, c
			}
		}
		break
	}
	return r
}

// fromPackage returns the [Result] of a package reported by pkg-config.
func fromPackage(pkg *Package) (*Result, error) {
	r := &Result{Source: SourcePkgConfig, Package: pkg.Name, Version: pkg.Version}
	for _, flag := range pkg.Libs {
		switch {
		case strings.HasPrefix(flag, "-L") && len(flag) > 2:
			if d, err := NewDir(flag[2:]); err == nil {
				r.Search = append(r.Search, d)
				continue
			}
			r.Flags = append(r.Flags, flag)
		case strings.HasPrefix(flag, "-l") && len(flag) > 2:
			r.Libs = append(r.Libs, Lib{Dynamic, flag[2:]})
		default:
			r.Flags = append(r.Flags, flag)
		}
	}
	if len(r.Libs) == 0 {
		return nil, ErrNoLibrary
	}
	r.Search = compactDirs(r.Search)

	dirs := r.Search
	if d, err := NewDir(pkg.LibDir); err == nil {
		dirs = compactDirs(append(dirs, d))
	}
	if pathname, err := FindShared(dirs, r.Libs[0].Name); err == nil {
		if c, err := Symbols(pathname); err == nil {
			r.Object, r.Capabilities = pathname, c
			return r, nil
		}
	}
	r.Capabilities = Headers(pkg.IncludeDir, pkg.Version)
	return r, nil
}
