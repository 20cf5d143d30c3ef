// Package unit escapes strings for inclusion in systemd unit names.
package unit

import (
	"errors"
	"path"
	"strings"
)

const hex = "0123456789abcdef"

// Escape escapes s for use in a unit name. '/' becomes '-', and every byte
// other than ASCII alphanumerics, ':', '_' and a '.' not at the start is
// written as a \xNN escape.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '/':
			b.WriteByte('-')
		case c == '.' && i > 0,
			c == '_', c == ':',
			'0' <= c && c <= '9', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
			b.WriteByte(c)
		default:
			b.WriteString(`\x`)
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0xf])
		}
	}
	return b.String()
}

// EscapePath is like [Escape] but normalises p as a path first, dropping
// redundant and surrounding slashes. The root directory escapes to "-".
func EscapePath(p string) string {
	p = strings.Trim(path.Clean("/"+p), "/")
	if p == "" {
		return "-"
	}
	return Escape(p)
}

// ErrEscape is returned by [Unescape] for a malformed \xNN escape.
var ErrEscape = errors.New("malformed escape sequence")

// Unescape reverses [Escape].
func Unescape(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '-':
			b.WriteByte('/')
		case '\\':
			if i+3 >= len(s) || s[i+1] != 'x' {
				return "", ErrEscape
			}
			hi, lo := unhex(s[i+2]), unhex(s[i+3])
			if hi < 0 || lo < 0 {
				return "", ErrEscape
			}
			b.WriteByte(byte(hi<<4 | lo))
			i += 3
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func unhex(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// UnescapePath reverses [EscapePath], returning an absolute path.
func UnescapePath(s string) (string, error) {
	if s == "-" {
		return "/", nil
	}
	p, err := Unescape(s)
	if err != nil {
		return "", err
	}
	return "/" + p, nil
}

// Instance returns the name of an instance of template, like
// getty@tty1.service for the template getty@.service.
func Instance(template, instance string) (string, bool) {
	return instantiate(template, Escape(instance))
}

// PathInstance is like [Instance] but escapes instance with [EscapePath].
func PathInstance(template, instance string) (string, bool) {
	return instantiate(template, EscapePath(instance))
}

func instantiate(template, escaped string) (string, bool) {
	prefix, suffix, ok := strings.Cut(template, "@.")
	if !ok || prefix == "" || strings.Contains(suffix, "@") {
		return "", false
	}
	return prefix + "@" + escaped + "." + suffix, true
}
