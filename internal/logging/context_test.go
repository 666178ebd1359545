package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestContextFields_Empty(t *testing.T) {
	assert.Empty(t, ContextFields(context.Background()))
}

func TestContextFields_OTELTracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := trace.NewTracerProvider(
		trace.WithSampler(trace.AlwaysSample()),
		trace.WithSyncer(exporter),
	)
	ctx, span := provider.Tracer("test").Start(context.Background(), "insight")
	defer span.End()

	keys := map[string]bool{}
	for _, f := range ContextFields(ctx) {
		keys[f.Key] = true
	}
	assert.True(t, keys["trace_id"], "trace_id field missing")
	assert.True(t, keys["span_id"], "span_id field missing")
	assert.True(t, keys["trace_sampled"], "trace_sampled field missing")
}

func TestContextFields_CommandAndSession(t *testing.T) {
	ctx := WithCommand(context.Background(), "dashboard")
	ctx = WithSessionID(ctx, "4f1c2b9a-7d1e-4b8e-9a55-0c2d6f3e8a11")

	fields := ContextFields(ctx)
	assert.Len(t, fields, 2)
	assert.Equal(t, "dashboard", CommandFromContext(ctx))
	assert.Equal(t, "4f1c2b9a-7d1e-4b8e-9a55-0c2d6f3e8a11", SessionIDFromContext(ctx))
}

func TestWithSessionID_PanicsOnInvalid(t *testing.T) {
	tests := []string{"", "has space", "semi;colon"}
	for _, id := range tests {
		assert.Panics(t, func() { WithSessionID(context.Background(), id) }, id)
	}
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()), "missing logger falls back to nop")

	tl := NewTestLogger()
	ctx := WithLogger(context.Background(), tl.Logger)
	assert.Same(t, tl.Logger, FromContext(ctx))
}
