package locate

import (
	"encoding/json"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir(t *testing.T) {
	t.Parallel()

	d, err := NewDir("/usr//lib/")
	require.NoError(t, err)
	assert.Equal(t, "/usr/lib", d.String())
	assert.Equal(t, "/usr/lib/libsystemd.so", d.Join("libsystemd.so"))
	assert.True(t, d.Is(MustDir("/usr/lib")))
	assert.False(t, d.Is(nil))
	assert.True(t, (*Dir)(nil).Is(nil))

	_, err = NewDir("usr/lib")
	assert.ErrorIs(t, err, syscall.EINVAL)
	assert.ErrorIs(t, err, &DirError{"usr/lib", ErrNotAbsolute})
	assert.ErrorIs(t, err, ErrNotAbsolute)
	assert.EqualError(t, err, `library directory "usr/lib" is not absolute`)

	assert.PanicsWithValue(t, "attempted use of zero Dir", func() { _ = new(Dir).String() })
	assert.Panics(t, func() { MustDir("lib") })
}

func TestDirUnsafe(t *testing.T) {
	t.Parallel()

	for _, pathname := range []string{
		"/opt/sd\n#cgo LDFLAGS: -Wl,-rpath,/evil",
		"/opt/sd lib",
		"/opt/sd\tlib",
		"/opt/\"sd\"",
		"/opt/'sd'",
		"/opt/`sd`",
		"/opt/sd\\lib",
		"/opt/sd\x00",
		"/opt/sd\x7f",
		"/opt/sd\u00a0lib",
		"/opt/sd\xff",
	} {
		pathname := pathname
		t.Run(pathname, func(t *testing.T) {
			t.Parallel()
			d, err := NewDir(pathname)
			assert.Nil(t, d)
			assert.ErrorIs(t, err, ErrUnsafePathname)
			assert.ErrorIs(t, err, syscall.EINVAL)
			assert.Equal(t, &DirError{pathname, ErrUnsafePathname}, err)
		})
	}

	assert.EqualError(t, &DirError{"/a b", ErrUnsafePathname},
		`library directory "/a b" contains whitespace, control or quote characters`)

	d, err := NewDir("/opt/systemd-256.7/lib64/x86_64+gnu")
	require.NoError(t, err)
	assert.Equal(t, "/opt/systemd-256.7/lib64/x86_64+gnu", d.String())

	var v struct{ Dir *Dir }
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"Dir":"/opt/a\nb"}`), &v), ErrUnsafePathname)
}

func TestDirEncoding(t *testing.T) {
	t.Parallel()

	var v struct{ Dir *Dir }
	require.NoError(t, json.Unmarshal([]byte(`{"Dir":"/opt/lib"}`), &v))
	assert.Equal(t, "/opt/lib", v.Dir.String())
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"Dir":"opt/lib"}`), &v), syscall.EINVAL)

	var d Dir
	require.NoError(t, d.UnmarshalText([]byte("/srv")))
	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "/srv", string(text))
}

func TestCompactDirs(t *testing.T) {
	t.Parallel()

	got := compactDirs([]*Dir{MustDir("/b"), MustDir("/a"), MustDir("/b/"), MustDir("/c"), MustDir("/a")})
	want := []string{"/b", "/a", "/c"}
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i], got[i].String())
	}
}
