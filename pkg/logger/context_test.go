package logger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/catalog/pkg/interfaces"
	"github.com/narwhalmedia/catalog/pkg/logger"
)

func newZapLogger(t *testing.T) *logger.ZapLogger {
	t.Helper()
	l, err := logger.NewFromConfig(logger.Config{Level: "error"})
	require.NoError(t, err)
	return l
}

func TestFromContext_FallsBackWithoutStoredLogger(t *testing.T) {
	fallback := newZapLogger(t)

	assert.Same(t, interfaces.Logger(fallback), logger.FromContext(context.Background(), fallback))
}

func TestFromContext_ReturnsStoredLogger(t *testing.T) {
	base := newZapLogger(t)
	scoped := base.WithFields(interfaces.String("request_id", "abc"))
	ctx := logger.WithContext(context.Background(), scoped)

	assert.Same(t, scoped, logger.FromContext(ctx, base))
}

func TestZapLoggerWithContext(t *testing.T) {
	base := newZapLogger(t)
	scoped := base.WithFields(interfaces.String("request_id", "abc"))

	assert.Same(t, scoped, base.WithContext(logger.WithContext(context.Background(), scoped)))
	assert.Same(t, interfaces.Logger(base), base.WithContext(context.Background()))
}
