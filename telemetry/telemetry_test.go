package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetupWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup("", ServiceName)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestTracerProvider(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := NewTracerProvider(exp, ServiceName)

	_, span := tp.Tracer("test").Start(context.Background(), "parse")
	span.End()
	require.NoError(t, tp.ForceFlush(context.Background()))
	defer tp.Shutdown(context.Background())

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "parse", spans[0].Name)
	assert.Contains(t, spans[0].Resource.String(), ServiceName)
}

var testCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bolinas_telemetry_test_total",
	Help: "Counter used by the telemetry tests",
})

func TestMetricsHandler(t *testing.T) {
	testCounter.Inc()
	srv := httptest.NewServer(MetricsHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "bolinas_telemetry_test_total 1"))
}

func TestServeMetrics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown, err := ServeMetrics(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, err = ServeMetrics(ctx, "not-an-address")
	assert.Error(t, err)
}
