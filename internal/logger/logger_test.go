package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	scoped := zap.New(core).With(zap.String("request_id", "abc"))

	ctx := NewContext(context.Background(), scoped)
	FromContext(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "abc", logs.All()[0].ContextMap()["request_id"])
}

func TestFromContext_FallsBackToGlobal(t *testing.T) {
	assert.Same(t, Logger, FromContext(context.Background()))
}

func TestInit(t *testing.T) {
	require.NoError(t, Init("production"))
	assert.False(t, Logger.Core().Enabled(zap.DebugLevel))

	require.NoError(t, Init("development"))
	assert.True(t, Logger.Core().Enabled(zap.DebugLevel))
}
