package locate

import (
	"debug/elf"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Capabilities are the optional parts of libsystemd a build can rely on.
type Capabilities struct {
	// Journal is set if sd-journal is available.
	Journal bool `json:"journal" yaml:"journal"`
	// Bus is set if sd-bus is available.
	Bus bool `json:"bus" yaml:"bus"`
	// V245 is set if functions introduced in systemd 245 are available.
	V245 bool `json:"v245" yaml:"v245"`
}

// Build tags derived from [Capabilities].
const (
	TagNoJournal = "systemd_nojournal"
	TagNoBus     = "systemd_nobus"
	TagV245      = "systemd_v245"
)

// Tags returns the build tags selecting the packages usable with c.
func (c Capabilities) Tags() []string {
	tags := make([]string, 0, 3)
	if !c.Journal {
		tags = append(tags, TagNoJournal)
	}
	if !c.Bus {
		tags = append(tags, TagNoBus)
	}
	if c.V245 {
		tags = append(tags, TagV245)
	}
	return tags
}

// Symbols probing each capability.
const (
	symJournal = "sd_journal_sendv"
	symBus     = "sd_bus_open"
	symV245    = "sd_journal_open_namespace"
)

// Symbols returns the capabilities of the shared object at pathname
// according to its dynamic symbol table.
func Symbols(pathname string) (Capabilities, error) {
	f, err := elf.Open(pathname)
	if err != nil {
		return Capabilities{}, err
	}
	defer f.Close()

	syms, err := f.DynamicSymbols()
	if err != nil {
		return Capabilities{}, err
	}
	var c Capabilities
	for _, sym := range syms {
		if sym.Section == elf.SHN_UNDEF || elf.ST_TYPE(sym.Info) != elf.STT_FUNC {
			continue
		}
		switch sym.Name {
		case symJournal:
			c.Journal = true
		case symBus:
			c.Bus = true
		case symV245:
			c.V245 = true
		}
	}
	return c, nil
}

// ErrNoSharedObject is returned by [FindShared] when no candidate exists.
var ErrNoSharedObject = errors.New("no shared object found")

// FindShared returns the first shared object of library name in dirs.
// The unversioned development symlink is preferred over versioned names.
func FindShared(dirs []*Dir, name string) (string, error) {
	base := "lib" + name + ".so"
	for _, d := range dirs {
		if pathname := d.Join(base); isFile(pathname) {
			return pathname, nil
		}
		matches, err := filepath.Glob(d.Join(base + ".*"))
		if err != nil {
			return "", err
		}
		slices.Sort(matches)
		for _, pathname := range matches {
			if isFile(pathname) {
				return pathname, nil
			}
		}
	}
	return "", ErrNoSharedObject
}

func isFile(pathname string) bool {
	fi, err := os.Stat(pathname)
	return err == nil && fi.Mode().IsRegular()
}

// Headers returns the capabilities implied by the headers in includeDir and
// the package version, for when no shared object can be inspected.
func Headers(includeDir, version string) Capabilities {
	major := majorVersion(version)
	c := Capabilities{V245: major >= 245}
	if includeDir != "" {
		c.Journal = isFile(filepath.Join(includeDir, "systemd", "sd-journal.h"))
		c.Bus = isFile(filepath.Join(includeDir, "systemd", "sd-bus.h")) && (major == 0 || major >= 221)
	}
	return c
}

// majorVersion returns the leading number of a systemd version like
// "255" or "256.4", or zero if version is not numeric.
func majorVersion(version string) int {
	s, _, _ := strings.Cut(version, ".")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
