package logger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Formats(t *testing.T) {
	for _, format := range []string{"", "console", "json"} {
		l, err := New(Config{Level: "debug", Format: format})
		require.NoError(t, err, format)
		require.NotNil(t, l)
	}
}

func TestNew_RejectsUnknownValues(t *testing.T) {
	_, err := New(Config{Level: "verbose"})
	assert.Error(t, err)

	_, err = New(Config{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestNamedAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).Named("atmosphere")

	l.Warn("below floor",
		Float64("altitude_m", -6000),
		String("policy", "reject"),
		Error(errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "atmosphere", entries[0].LoggerName)
	assert.Equal(t, "below floor", entries[0].Message)

	ctx := entries[0].ContextMap()
	assert.Equal(t, -6000.0, ctx["altitude_m"])
	assert.Equal(t, "reject", ctx["policy"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	started := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	l := FromZap(zap.New(core)).With(String("remote_addr", "10.0.0.1:5000"))

	l.Debug("stream started", Time("started_at", started))
	l.Debug("stream complete", Bool("extrapolated", true))

	entries := logs.All()
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "10.0.0.1:5000", e.ContextMap()["remote_addr"])
	}
	got, ok := entries[0].ContextMap()["started_at"].(time.Time)
	require.True(t, ok)
	assert.True(t, started.Equal(got))
	assert.Equal(t, true, entries[1].ContextMap()["extrapolated"])
}
