package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("development", func(t *testing.T) {
		l, err := New("development", "debug")
		require.NoError(t, err)
		assert.NotNil(t, l.SugaredLogger)
	})

	t.Run("production", func(t *testing.T) {
		l, err := New("production", "warn")
		require.NoError(t, err)
		assert.False(t, l.SugaredLogger.Desugar().Core().Enabled(zapcore.InfoLevel))
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := New("development", "chatty")
		assert.Error(t, err)
	})
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("component", "gateway").Warn("call failed", "resource", "posts")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "call failed", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "gateway", ctx["component"])
	assert.Equal(t, "posts", ctx["resource"])
}

func TestNop(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Info("ignored", "k", "v")
		l.Sync()
	})
}
