package logger

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert := require.New(t)

	assert.Equal(slog.LevelDebug, parseLevel("debug"))
	assert.Equal(slog.LevelWarn, parseLevel(" WARN "))
	assert.Equal(slog.LevelWarn, parseLevel("warning"))
	assert.Equal(slog.LevelError, parseLevel("error"))
	assert.Equal(slog.LevelInfo, parseLevel(""))
	assert.Equal(slog.LevelInfo, parseLevel("verbose"))
}
