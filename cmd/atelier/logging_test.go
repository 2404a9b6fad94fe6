package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/atelier/config"
)

func TestNewLogger_Console(t *testing.T) {
	var stderr bytes.Buffer
	logger, closer := newLogger(config.LogConfig{Level: "info"}, false, &stderr)
	defer closer.Close()

	logger.Debug().Msg("hidden")
	logger.Info().Str("order", "ring").Msg("order saved")

	out := stderr.String()
	assert.Contains(t, out, "order saved")
	assert.Contains(t, out, "ring")
	assert.NotContains(t, out, "hidden")
}

func TestNewLogger_DevLowersLevel(t *testing.T) {
	var stderr bytes.Buffer
	logger, closer := newLogger(config.LogConfig{Level: "warn"}, true, &stderr)
	defer closer.Close()

	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
	logger.Debug().Msg("visible in dev")
	assert.Contains(t, stderr.String(), "visible in dev")
}

func TestNewLogger_TraceStaysInDev(t *testing.T) {
	logger, closer := newLogger(config.LogConfig{Level: "trace"}, true, &bytes.Buffer{})
	defer closer.Close()

	assert.Equal(t, zerolog.TraceLevel, logger.GetLevel())
}

func TestNewLogger_BadLevelFallsBackToInfo(t *testing.T) {
	logger, closer := newLogger(config.LogConfig{Level: "loud"}, false, &bytes.Buffer{})
	defer closer.Close()

	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "atelier.log")
	cfg := config.LogConfig{Level: "info", File: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1}

	logger, closer := newLogger(cfg, false, &bytes.Buffer{})
	logger.Info().Str("client", "Ada").Msg("client created")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"client created"`)
	assert.Contains(t, string(data), `"client":"Ada"`)
}
