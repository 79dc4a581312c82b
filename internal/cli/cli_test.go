package cli

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/soochak/internal/config"
	"github.com/dshills/soochak/internal/event"
)

const testManifest = `
[[listener]]
event = "user.created"
priority = 10
action = "print"
message = "welcome ${user}"

[[listener]]
event = "user.created"
action = "set"

[listener.params]
welcomed = true

[[listener]]
event = "user.deleted"
action = "fail"
message = "cannot delete ${user}"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "soochak dev")
}

func TestTriggerCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "listeners.toml", testManifest)

	out, _, err := execute(t, "", "trigger", "user.created", "-m", path, "-p", "user=ana", "-p", "age=30")
	require.NoError(t, err)

	assert.Contains(t, out, "welcome ana\n")
	assert.Contains(t, out, "user.created: completed (2 listeners")
	assert.Contains(t, out, "  age = 30\n")
	assert.Contains(t, out, "  welcomed = true\n")
	assert.Less(t, strings.Index(out, "welcome ana"), strings.Index(out, "user.created: completed"))
}

func TestTriggerCommand_ListenerFails(t *testing.T) {
	path := writeFile(t, t.TempDir(), "listeners.toml", testManifest)

	out, _, err := execute(t, "", "trigger", "user.deleted", "-m", path, "-p", "user=bo")
	require.Error(t, err)

	assert.Contains(t, err.Error(), "cannot delete bo")
	assert.Contains(t, out, "user.deleted: failed (1 listeners")
}

func TestTriggerCommand_NoListeners(t *testing.T) {
	path := writeFile(t, t.TempDir(), "listeners.toml", testManifest)

	out, _, err := execute(t, "", "trigger", "nobody.cares", "-m", path)
	require.NoError(t, err)
	assert.Contains(t, out, "nobody.cares: completed (0 listeners")
}

func TestTriggerCommand_Errors(t *testing.T) {
	path := writeFile(t, t.TempDir(), "listeners.toml", testManifest)
	t.Setenv("SOOCHAK_MANIFEST", "")

	_, _, err := execute(t, "", "trigger", "user.created")
	assert.ErrorIs(t, err, errNoManifest)

	_, _, err = execute(t, "", "trigger", "user.created", "-m", path, "-p", "novalue")
	assert.ErrorContains(t, err, "invalid param")

	_, _, err = execute(t, "", "trigger", "", "-m", path)
	assert.Error(t, err)

	_, _, err = execute(t, "", "trigger", "user.created", "-m", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, _, err = execute(t, "", "trigger")
	assert.Error(t, err)
}

func TestManifestFromConfig(t *testing.T) {
	dir := t.TempDir()
	manifestPath := writeFile(t, dir, "listeners.toml", testManifest)
	configPath := writeFile(t, dir, "soochak.yaml", "manifest: "+manifestPath+"\nlog:\n  level: debug\n")

	out, stderr, err := execute(t, "", "trigger", "user.created", "-c", configPath, "-p", "user=cy")
	require.NoError(t, err)
	assert.Contains(t, out, "welcome cy")
	assert.Contains(t, stderr, "manifest loaded", "debug logs should go to stderr")
}

func TestInvalidLogFormat(t *testing.T) {
	_, _, err := execute(t, "", "version", "--log-format", "xml")
	assert.ErrorIs(t, err, config.ErrValidationFailed)
}

func TestListenersCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "listeners.toml", testManifest)

	out, _, err := execute(t, "", "listeners", "-m", path)
	require.NoError(t, err)
	assert.Equal(t, "user.created (2)\nuser.deleted (1)\n", out)

	out, _, err = execute(t, "", "listeners", "user.created", "-m", path)
	require.NoError(t, err)
	assert.Equal(t, "1. print (priority 10)\n2. set (priority 0)\n", out)

	out, _, err = execute(t, "", "listeners", "missing", "-m", path)
	require.NoError(t, err)
	assert.Equal(t, "no listeners for \"missing\"\n", out)
}

func TestWatchCommand_Stdin(t *testing.T) {
	path := writeFile(t, t.TempDir(), "listeners.toml", testManifest)

	stdin := "user.created user=dee\n\n# comment\nuser.created broken\nuser.deleted user=eve\n"
	out, stderr, err := execute(t, stdin, "watch", "-m", path)
	require.NoError(t, err)

	assert.Contains(t, out, "welcome dee")
	assert.Contains(t, out, "user.deleted: failed")
	assert.Contains(t, stderr, "invalid param \"broken\"")
	assert.Contains(t, stderr, "cannot delete eve")
}

func TestSessionReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "listeners.toml", testManifest)
	logger := slog.New(slog.DiscardHandler)

	s, err := newSession(path, logger, io.Discard)
	require.NoError(t, err)
	defer s.close()
	assert.Equal(t, 2, s.manager.Registry().Count("user.created"))

	writeFile(t, dir, "listeners.toml", `
[[listener]]
event = "user.created"
action = "stop"
`)
	require.NoError(t, s.load())
	assert.Equal(t, 1, s.manager.Registry().Count("user.created"))
	assert.False(t, s.manager.HasListeners("user.deleted"))

	// A broken manifest keeps the previous listeners.
	writeFile(t, dir, "listeners.toml", `
[[listener]]
event = "user.created"
action = "lua"
code = "x = 1"
`)
	require.Error(t, s.load())
	assert.Equal(t, 1, s.manager.Registry().Count("user.created"))

	ev, result, err := s.trigger(t.Context(), "user.created", nil)
	require.NoError(t, err)
	assert.True(t, ev.IsPropagationStopped())
	assert.True(t, result.IsStopped())
}

func TestSessionFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hook.lua", "function handle(event) end")
	path := writeFile(t, dir, "listeners.yaml", `
listener:
  - event: a
    action: lua
    script: hook.lua
`)

	s, err := newSession(path, slog.New(slog.DiscardHandler), io.Discard)
	require.NoError(t, err)
	defer s.close()

	assert.Equal(t, []string{path, filepath.Join(dir, "hook.lua")}, s.files())
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"name=ana", "n=3", "ok=true", "ratio=0.5", "empty=", "eq=a=b"})
	require.NoError(t, err)

	assert.Equal(t, event.Params{
		"name":  "ana",
		"n":     3,
		"ok":    true,
		"ratio": 0.5,
		"empty": "",
		"eq":    "a=b",
	}, params)

	_, err = parseParams([]string{"=x"})
	assert.Error(t, err)
}
