package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "")
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Str("file", "a.csv").Msg("loaded")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"loaded"`)
	assert.Contains(t, out, `"file":"a.csv"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.ErrorContains(t, err, `invalid log level "loud"`)
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewConsole(&buf, "warn")
	require.NoError(t, err)

	log.Info().Msg("quiet")
	log.Warn().Str("file", "a.csv").Msg("column missing")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "column missing")
	assert.Contains(t, out, "file=a.csv")
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := NewConsole(&bytes.Buffer{}, "loud")
	assert.Error(t, err)
	_, err = NewWithWriter(&bytes.Buffer{}, "loud")
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "info")
	require.NoError(t, err)

	ctx := WithContext(context.Background(), log)
	l := FromContext(ctx)
	l.Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")

	// Missing logger falls back to a disabled one.
	nop := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, nop.GetLevel())
}
