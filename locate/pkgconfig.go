package locate

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

const (
	pkgConfigName    = "pkg-config"
	pkgConfigTimeout = 2 * time.Second
)

// Package is what pkg-config reports for a package.
type Package struct {
	Name       string   `json:"name" yaml:"name"`
	Version    string   `json:"version" yaml:"version"`
	Libs       []string `json:"libs" yaml:"libs"`
	CFlags     []string `json:"cflags,omitempty" yaml:"cflags,omitempty"`
	LibDir     string   `json:"libdir,omitempty" yaml:"libdir,omitempty"`
	IncludeDir string   `json:"includedir,omitempty" yaml:"includedir,omitempty"`
}

// PkgConfigError is returned when pkg-config fails.
type PkgConfigError struct {
	// Args are the arguments pkg-config was invoked with.
	Args []string
	// Stderr is what pkg-config wrote to its standard error.
	Stderr string
	// Err is the error returned by [exec.Cmd].
	Err error
}

func (e *PkgConfigError) Error() string {
	s := pkgConfigName + " " + strings.Join(e.Args, " ") + ": " + e.Err.Error()
	if e.Stderr != "" {
		s += ": " + e.Stderr
	}
	return s
}

func (e *PkgConfigError) Unwrap() error { return e.Err }

// pkgConfig runs pkg-config at pathname.
type pkgConfig struct {
	pathname string
	env      []string
}

// run runs pkg-config with args and returns its trimmed standard output.
func (p pkgConfig) run(ctx context.Context, args ...string) (string, error) {
	c, cancel := context.WithTimeout(ctx, pkgConfigTimeout)
	defer cancel()

	cmd := exec.CommandContext(c, p.pathname, args...)
	cmd.Env = p.env
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.Stdout, cmd.Stderr = stdout, stderr
	if err := cmd.Run(); err != nil {
		return "", &PkgConfigError{args, strings.TrimSpace(stderr.String()), err}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// query collects everything pkg-config knows about the package name.
func (p pkgConfig) query(ctx context.Context, name string) (*Package, error) {
	if _, err := p.run(ctx, "--exists", "--print-errors", name); err != nil {
		return nil, err
	}

	pkg := &Package{Name: name}
	var libs, cflags string
	for _, v := range []struct {
		p    *string
		args []string
	}{
		{&pkg.Version, []string{"--modversion", name}},
		{&libs, []string{"--libs", name}},
		{&cflags, []string{"--cflags", name}},
		{&pkg.LibDir, []string{"--variable=libdir", name}},
		{&pkg.IncludeDir, []string{"--variable=includedir", name}},
	} {
		var err error
		if *v.p, err = p.run(ctx, v.args...); err != nil {
			return nil, err
		}
	}
	pkg.Libs, pkg.CFlags = splitFlags(libs), splitFlags(cflags)
	return pkg, nil
}

// splitFlags splits pkg-config output into individual flags. A backslash
// escapes the following byte, as pkg-config does for spaces in paths.
func splitFlags(s string) []string {
	var (
		flags []string
		cur   strings.Builder
		in    bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			cur.WriteByte(s[i])
			in = true
		case c == ' ' || c == '\t' || c == '\n':
			if in {
				flags = append(flags, cur.String())
				cur.Reset()
				in = false
			}
		default:
			cur.WriteByte(c)
			in = true
		}
	}
	if in {
		flags = append(flags, cur.String())
	}
	return flags
}
