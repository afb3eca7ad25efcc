package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	t.Run("returns nop logger when absent", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("returns attached logger", func(t *testing.T) {
		log := zap.NewExample()
		ctx := WithContext(context.Background(), log)
		assert.Same(t, log, FromContext(ctx))
	})
}

func TestFromContextOr(t *testing.T) {
	fallback := zap.NewExample()

	t.Run("returns fallback when absent", func(t *testing.T) {
		assert.Same(t, fallback, FromContextOr(context.Background(), fallback))
	})

	t.Run("prefers attached logger", func(t *testing.T) {
		log := zap.NewExample()
		ctx := WithContext(context.Background(), log)
		assert.Same(t, log, FromContextOr(ctx, fallback))
	})
}

func TestContextValues(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx, log := WithRequestID(context.Background(), base, "req-1")
	ctx, log = WithCompany(ctx, log, "acme")
	ctx = WithDirection(ctx, "INBOUND")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "acme", GetCompany(ctx))
	assert.Equal(t, "INBOUND", GetDirection(ctx))
	assert.Equal(t, "", GetCompany(context.Background()))

	L(ctx).Info("run started")
	log.Info("direct")

	entries := recorded.All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "acme", fields["company"])
	assert.Equal(t, "INBOUND", fields["direction"])
	assert.NotContains(t, entries[1].ContextMap(), "direction")
}

func TestContextLogger_TraceCorrelation(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	WithLogger(ctx, zap.New(core)).With(zap.String("model", "pos.category")).Warn("record failed")

	entries := recorded.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
	assert.Equal(t, "pos.category", fields["model"])
}
