package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLog_FallsBackWithoutContextLogger(t *testing.T) {
	SetGlobal(nil)
	assert.Same(t, fallback, Log(context.Background()))
}

func TestLog_PrefersContextLogger(t *testing.T) {
	core, _ := observer.New(zap.DebugLevel)
	ctxLogger := Wrap(zap.New(core))
	SetGlobal(Nop())
	t.Cleanup(func() { SetGlobal(nil) })

	ctx := NewContext(context.Background(), ctxLogger)
	assert.Same(t, ctxLogger, Log(ctx))
}

func TestRequestIDIsAttached(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := Wrap(zap.New(core))

	ctx := NewRequestIDContext(context.Background(), "req-1")
	l.Info(ctx, "hello", zap.String(Operation, "fetch"))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields[RequestID])
	assert.Equal(t, "fetch", fields[Operation])
}

func TestNewRequestIDContext_Generates(t *testing.T) {
	ctx := NewRequestIDContext(context.Background(), "")
	id, ok := GetRequestID(ctx)
	require.True(t, ok)
	assert.Len(t, id, 36)
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l, err := New("debug", path)
	require.NoError(t, err)

	l.Debug(context.Background(), "written")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
}

func TestNew_RejectsBadLevel(t *testing.T) {
	_, err := New("loud", "")
	assert.Error(t, err)
}
