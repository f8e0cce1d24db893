package util

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevel(t *testing.T) {
	logger := NewLogger("debug")
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())

	logger = NewLogger("invalid")
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger = NewLogger("")
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger = NewLogger("WARN")
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestNewLoggerToFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "warn")

	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	logger.Warn().Str("ticker", "QQQ").Msg("shown")
	assert.Contains(t, buf.String(), `"ticker":"QQQ"`)
	assert.Contains(t, buf.String(), `"message":"shown"`)
}
