package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CLAUDE_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".claude", "projects"), cfg.Logs.Root)
	assert.Equal(t, filepath.Join(home, ".local", "share", "chatlens", "catalog.json"), cfg.Catalog.Path)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8420, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Zero(t, cfg.List.MinMessages)
}

func TestLoadYAMLFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
logs:
  root: /var/logs/chats
server:
  port: 9000
  watch: true
list:
  min_messages: 2
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/logs/chats", cfg.Logs.Root)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.Server.Watch)
	assert.Equal(t, 2, cfg.List.MinMessages)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o644))
	t.Setenv("CHATLENS_SERVER_PORT", "9001")
	t.Setenv("CHATLENS_LOG_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	write := func(body string) string {
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	_, err := Load(write("server:\n  port: 99999\n"))
	assert.ErrorContains(t, err, "invalid server port")

	_, err = Load(write("log:\n  format: xml\n"))
	assert.ErrorContains(t, err, "invalid log format")

	_, err = Load(write("list:\n  min_messages: -1\n"))
	assert.ErrorContains(t, err, "min_messages")
}

func TestDetectLogsRoot(t *testing.T) {
	got, err := DetectLogsRoot("/explicit/projects")
	require.NoError(t, err)
	assert.Equal(t, "/explicit/projects", got)

	t.Setenv("CLAUDE_HOME", "/opt/claude")
	got, err = DetectLogsRoot("")
	require.NoError(t, err)
	assert.Equal(t, "/opt/claude/projects", got)

	t.Setenv("CLAUDE_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err = DetectLogsRoot("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".claude", "projects"), got)
}
