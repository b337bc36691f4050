package parse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/commonlog"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestParseSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer tp.Shutdown(context.Background())

	g := mustGrammar(t, pairGrammar)
	p := New(g, WithTracer(tp.Tracer("test")), WithLogger(commonlog.GetLogger("test")))
	_, err := p.Parse(context.Background(), words("a a"), nil)
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "parse", spans[0].Name())
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "string", attrs["bolinas.input"].AsString())
	assert.Equal(t, int64(2), attrs["bolinas.words"].AsInt64())
	assert.True(t, attrs["bolinas.success"].AsBool())
}

func TestParseSpanRecordsError(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer tp.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := mustGrammar(t, pairGrammar)
	_, err := New(g, WithTracer(tp.Tracer("test"))).Parse(ctx, words("a a"), nil)
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.NotEmpty(t, spans[0].Events(), "the error is recorded as a span event")
}

func TestInputKind(t *testing.T) {
	graph := mustGraph(t, "p x\n")
	assert.Equal(t, "string", inputKind([]string{}, nil))
	assert.Equal(t, "graph", inputKind(nil, graph))
	assert.Equal(t, "sync", inputKind([]string{"a"}, graph))
}
