package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Zaphoood/hexhist/src/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert := assert.New(t)
	for name, want := range map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"info":  zerolog.InfoLevel,
		"":      zerolog.InfoLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
	} {
		got, err := ParseLevel(name)
		assert.Nil(err)
		assert.Equal(want, got)
	}
	_, err := ParseLevel("trace")
	assert.NotNil(err)
}

func TestSetupWritesToFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)
	path := filepath.Join(t.TempDir(), "hexhist.log")
	cfg := config.Default()
	cfg.LogFile = path
	cfg.LogLevel = "warn"

	closer, err := Setup(cfg)
	require.Nil(t, err)
	logger := Component("history")
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	require.Nil(t, closer.Close())

	content, err := os.ReadFile(path)
	require.Nil(t, err)
	assert.Contains(t, string(content), "shown")
	assert.Contains(t, string(content), "component=history")
	assert.NotContains(t, string(content), "hidden")
}

func TestSetupWithoutFile(t *testing.T) {
	closer, err := Setup(config.Default())
	assert.Nil(t, err)
	assert.Nil(t, closer.Close())
}
