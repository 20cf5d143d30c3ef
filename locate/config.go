package locate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables read by [Config.Env].
const (
	// EnvPkgName overrides the pkg-config package name.
	EnvPkgName = "SYSTEMD_PKG_NAME"
	// EnvLibDir names a library directory to link from without consulting pkg-config.
	EnvLibDir = "SYSTEMD_LIB_DIR"
	// EnvLibs lists the libraries to link from [EnvLibDir].
	EnvLibs = "SYSTEMD_LIBS"
)

const (
	// DefaultPkgName is the pkg-config package name of libsystemd.
	DefaultPkgName = "libsystemd"
	// DefaultLib is the library linked from a library directory override
	// when no library list is given.
	DefaultLib = "systemd"
)

// Kind is the way a library is linked.
type Kind uint8

const (
	// Dynamic links against a shared object.
	Dynamic Kind = iota
	// Static links against an archive.
	Static
)

var (
	// ErrEmptyEntry is returned for an empty entry in a library list.
	ErrEmptyEntry = errors.New("empty library entry")
	// ErrEmptyName is returned for an entry with a kind but no name.
	ErrEmptyName = errors.New("empty library name")
	// ErrUnknownKind is returned for an entry with an unsupported kind.
	ErrUnknownKind = errors.New("unknown link kind")
	// ErrInvalidName is returned for a name containing characters other than
	// ASCII letters, digits, '.', '_', '+' and '-'.
	ErrInvalidName = errors.New("invalid library name")
	// ErrLibsWithoutDir is returned for a library list without a library directory.
	ErrLibsWithoutDir = errors.New("libraries listed without a library directory")
)

// validName reports whether name is safe to emit unquoted into a #cgo directive.
func validName(name string) bool {
	for i := 0; i < len(name); i++ {
		switch c := name[i]; {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		case c == '.', c == '_', c == '+', c == '-':
		default:
			return false
		}
	}
	return true
}

func (k Kind) String() string {
	switch k {
	case Dynamic:
		return "dynamic"
	case Static:
		return "static"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind returns the [Kind] named s. "dylib" is accepted as an alias of "dynamic".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "dynamic", "dylib":
		return Dynamic, nil
	case "static":
		return Static, nil
	default:
		return 0, ErrUnknownKind
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
func (k *Kind) UnmarshalText(data []byte) (err error) {
	*k, err = ParseKind(string(data))
	return
}

// Lib is a library to link against.
type Lib struct {
	Kind Kind   `json:"kind" yaml:"kind"`
	Name string `json:"name" yaml:"name"`
}

func (l Lib) String() string {
	if l.Kind == Dynamic {
		return l.Name
	}
	return l.Kind.String() + "=" + l.Name
}

// LibsError is returned by [ParseLibs] for a malformed entry.
type LibsError struct {
	// Entry is the offending entry, possibly empty.
	Entry string
	// Index is the position of Entry in the list.
	Index int
	// Err is one of [ErrEmptyEntry], [ErrEmptyName], [ErrUnknownKind] or [ErrInvalidName].
	Err error
}

func (e *LibsError) Error() string {
	return fmt.Sprintf("library entry %d %q: %v", e.Index, e.Entry, e.Err)
}

func (e *LibsError) Unwrap() error { return e.Err }

// Message returns a user-facing error message.
func (e *LibsError) Message() string {
	return fmt.Sprintf("invalid %s entry %q: %v", EnvLibs, e.Entry, e.Err)
}

// ParseLibs parses a library list of the form NAME[:NAME...], where every
// NAME may be prefixed with KIND= to select how it is linked. Libraries
// without a kind are linked dynamically. Any malformed entry fails the
// whole list.
func ParseLibs(s string) ([]Lib, error) {
	entries := strings.Split(s, ":")
	libs := make([]Lib, 0, len(entries))
	for i, entry := range entries {
		if entry == "" {
			return nil, &LibsError{entry, i, ErrEmptyEntry}
		}

		lib := Lib{Kind: Dynamic, Name: entry}
		if kind, name, ok := strings.Cut(entry, "="); ok {
			var err error
			if lib.Kind, err = ParseKind(kind); err != nil {
				return nil, &LibsError{entry, i, err}
			}
			lib.Name = name
		}
		if lib.Name == "" {
			return nil, &LibsError{entry, i, ErrEmptyName}
		}
		if !validName(lib.Name) {
			return nil, &LibsError{entry, i, ErrInvalidName}
		}
		libs = append(libs, lib)
	}
	return libs, nil
}

// FormatLibs is the inverse of [ParseLibs].
func FormatLibs(libs []Lib) string {
	s := make([]string, len(libs))
	for i, lib := range libs {
		s[i] = lib.String()
	}
	return strings.Join(s, ":")
}

// Config selects the libsystemd to link against.
type Config struct {
	// PkgName is the pkg-config package name. The zero value is [DefaultPkgName].
	PkgName string
	// LibDir is a directory to link from without consulting pkg-config.
	LibDir *Dir
	// Libs are linked from LibDir. The zero value links [DefaultLib] dynamically.
	// Libs is only meaningful together with LibDir.
	Libs []Lib
}

// config is the on-disk representation of [Config].
type config struct {
	PkgName string `yaml:"pkg_name,omitempty"`
	LibDir  *Dir   `yaml:"lib_dir,omitempty"`
	Libs    string `yaml:"libs,omitempty"`
}

// LoadConfig decodes a YAML configuration file from r. Unknown keys are rejected.
func LoadConfig(r io.Reader) (*Config, error) {
	var v config
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(&v); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	c := &Config{PkgName: v.PkgName, LibDir: v.LibDir}
	if v.Libs != "" {
		var err error
		if c.Libs, err = ParseLibs(v.Libs); err != nil {
			return nil, err
		}
		if c.LibDir == nil {
			return nil, fmt.Errorf("libs is set but lib_dir is not: %w", ErrLibsWithoutDir)
		}
	}
	return c, nil
}

// ReadConfig is like [LoadConfig] but reads the file at pathname.
func ReadConfig(pathname string) (*Config, error) {
	f, err := os.Open(pathname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadConfig(f)
}

func (c *Config) MarshalYAML() (any, error) {
	return config{c.PkgName, c.LibDir, FormatLibs(c.Libs)}, nil
}

// Env overrides fields of c with environment variables looked up by getenv.
// A nil getenv reads the process environment. Setting [EnvLibs] without a
// library directory from either source returns [ErrLibsWithoutDir].
func (c *Config) Env(getenv func(key string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv(EnvPkgName); v != "" {
		c.PkgName = v
	}
	if v := getenv(EnvLibDir); v != "" {
		d, err := NewDir(v)
		if err != nil {
			return err
		}
		c.LibDir = d
	}
	if v := getenv(EnvLibs); v != "" {
		libs, err := ParseLibs(v)
		if err != nil {
			return err
		}
		c.Libs = libs
		if c.LibDir == nil {
			return fmt.Errorf("%s is set but %s is not: %w", EnvLibs, EnvLibDir, ErrLibsWithoutDir)
		}
	}
	return nil
}

// pkgName returns the effective package name.
func (c *Config) pkgName() string {
	if c.PkgName == "" {
		return DefaultPkgName
	}
	return c.PkgName
}

// libs returns the effective library list.
func (c *Config) libs() []Lib {
	if len(c.Libs) == 0 {
		return []Lib{{Dynamic, DefaultLib}}
	}
	return c.Libs
}
