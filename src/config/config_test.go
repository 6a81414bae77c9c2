package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), CONFIG_FILE)
	require.Nil(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultsWithoutFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	assert.Nil(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	assert := assert.New(t)
	path := writeConfig(t, `
bytes_per_row: 8
log_file: /tmp/hexhist.log
log_level: debug
clear_clipboard_delay: 30s
confirm_quit: false
`)

	cfg, err := Load(path)
	if !assert.Nil(err) {
		return
	}
	assert.Equal(8, cfg.BytesPerRow)
	assert.Equal("/tmp/hexhist.log", cfg.LogFile)
	assert.Equal("debug", cfg.LogLevel)
	assert.Equal(30*time.Second, cfg.ClearClipboardDelay)
	assert.False(cfg.ConfirmQuit)
}

func TestDefaultPathFromXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.Nil(t, os.MkdirAll(filepath.Join(dir, CONFIG_DIR), 0o755))
	require.Nil(t, os.WriteFile(filepath.Join(dir, CONFIG_DIR, CONFIG_FILE), []byte("bytes_per_row: 4\n"), 0o644))

	cfg, err := Load("")
	assert.Nil(t, err)
	assert.Equal(t, 4, cfg.BytesPerRow)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "bytes_per_row: 8\nlog_level: warn\n")
	t.Setenv("HEXHIST_BYTES_PER_ROW", "32")

	cfg, err := Load(path)
	assert.Nil(t, err)
	assert.Equal(t, 32, cfg.BytesPerRow)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestExplicitPathMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.IsType(t, ConfigError{}, err)
}

func TestInvalid(t *testing.T) {
	cases := []string{
		"bytes_per_row: 0\n",
		"bytes_per_row: 65\n",
		"log_level: verbose\n",
		"clear_clipboard_delay: -1s\n",
		"bytes_per_row: [1, 2]\n",
	}
	for _, c := range cases {
		_, err := Load(writeConfig(t, c))
		assert.IsType(t, ConfigError{}, err, "Expected error for '%s'", c)
	}
}

func TestBadEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HEXHIST_BYTES_PER_ROW", "many")
	_, err := Load("")
	assert.IsType(t, ConfigError{}, err)
}
