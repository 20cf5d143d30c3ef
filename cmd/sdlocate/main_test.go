package main

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.gensokyo.uk/security/systemd/locate"
	"git.gensokyo.uk/security/systemd/message"
)

// env returns a getenv function looking up vars.
func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func runTest(t *testing.T, getenv func(string) string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var o, e bytes.Buffer
	msg := message.New(log.New(&e, "sdlocate: ", 0))
	err = run(context.Background(), msg, args, getenv, &o, &e)
	return o.String(), e.String(), err
}

func TestRunLibDir(t *testing.T) {
	t.Parallel()

	getenv := env(map[string]string{
		locate.EnvLibDir: "/opt/systemd/lib",
		locate.EnvLibs:   "static=systemd:cap",
	})

	t.Run("tags", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := runTest(t, getenv, "tags")
		require.NoError(t, err)
		assert.Equal(t, "\n", stdout)
	})

	t.Run("show", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := runTest(t, getenv, "show")
		require.NoError(t, err)
		assert.Equal(t, "Source:\t\tlib-dir\n"+
			"Libraries:\tstatic=systemd:static=cap\n"+
			"LDFLAGS:\t-L/opt/systemd/lib -Wl,-Bstatic -lsystemd -lcap -Wl,-Bdynamic\n"+
			"Journal:\ttrue\nBus:\t\ttrue\nv245:\t\tfalse\n", stdout)
	})

	t.Run("show json", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := runTest(t, getenv, "show", "--format", "json")
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"source": "lib-dir",
			"search": ["/opt/systemd/lib"],
			"libs": [{"kind": "static", "name": "systemd"}, {"kind": "static", "name": "cap"}],
			"capabilities": {"journal": true, "bus": true, "v245": false}
		}`, stdout)
	})

	t.Run("show yaml", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := runTest(t, getenv, "-f", "yaml", "show")
		require.NoError(t, err)
		assert.YAMLEq(t, `
source: lib-dir
search: [/opt/systemd/lib]
libs:
  - {kind: static, name: systemd}
  - {kind: static, name: cap}
capabilities: {journal: true, bus: true, v245: false}
`, stdout)
	})

	t.Run("generate", func(t *testing.T) {
		t.Parallel()
		pathname := filepath.Join(t.TempDir(), "zlink.go")
		stdout, stderr, err := runTest(t, getenv, "generate", "-v", "-o", pathname, "--package", "link")
		require.NoError(t, err)
		assert.Empty(t, stdout)
		assert.Equal(t, "sdlocate: located libsystemd via lib-dir\nsdlocate: writing "+pathname+"\n", stderr)

		got, err := os.ReadFile(pathname)
		require.NoError(t, err)
		assert.Contains(t, string(got), "package link\n")
		assert.Contains(t, string(got), "#cgo linux LDFLAGS: -L/opt/systemd/lib -Wl,-Bstatic -lsystemd -lcap -Wl,-Bdynamic\n")
	})
}

func TestRunConfig(t *testing.T) {
	t.Parallel()

	pathname := filepath.Join(t.TempDir(), "systemd.yaml")
	require.NoError(t, os.WriteFile(pathname, []byte("lib_dir: /usr/local/lib\nlibs: systemd\n"), 0600))

	stdout, _, err := runTest(t, env(nil), "generate", "--config", pathname)
	require.NoError(t, err)
	assert.Contains(t, stdout, "// Library directory: /usr/local/lib\n// Libraries: systemd\n")

	stdout, _, err = runTest(t, env(map[string]string{locate.EnvLibs: "dylib=systemd:static=lz4"}), "generate", "-c", pathname)
	require.NoError(t, err)
	assert.Contains(t, stdout, "#cgo linux LDFLAGS: -L/usr/local/lib -lsystemd -Wl,-Bstatic -llz4 -Wl,-Bdynamic\n")
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		env     map[string]string
		args    []string
		wantErr error
		wantMsg string
	}{
		{"help", nil, []string{"-h"}, errHelp, ""},
		{"no command", nil, nil, errHelp, ""},
		{"unknown command", nil, []string{"build"}, errUsage(`"build" is not a valid command`), `"build" is not a valid command`},
		{"extra argument", nil, []string{"tags", "show"}, errUsage(`unexpected argument "show"`), `unexpected argument "show"`},
		{"format", nil, []string{"show", "-f", "toml"}, errUsage(`invalid format "toml"`), `invalid format "toml"`},
		{"relative lib dir", map[string]string{locate.EnvLibDir: "lib"}, []string{"tags"},
			&locate.DirError{Pathname: "lib", Err: locate.ErrNotAbsolute}, ""},
		{"bad libs", map[string]string{locate.EnvLibDir: "/lib", locate.EnvLibs: "framework=systemd"}, []string{"tags"},
			locate.ErrUnknownKind, ""},
		{"libs without dir", map[string]string{locate.EnvLibs: "systemd"}, []string{"tags"},
			locate.ErrLibsWithoutDir, ""},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := runTest(t, env(tc.env), tc.args...)
			assert.ErrorIs(t, err, tc.wantErr)
			if tc.wantMsg != "" {
				m, ok := message.GetMessage(err)
				assert.True(t, ok)
				assert.Equal(t, tc.wantMsg, m)
			}
		})
	}
}
