// Package telemetry wires the parser's traces to an OTLP collector and its
// metrics to a Prometheus endpoint.
package telemetry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tliron/commonlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const ServiceName = "bolinas"

var log = commonlog.GetLogger("bolinas.telemetry")

// Setup installs a global tracer provider exporting to the OTLP/gRPC
// collector at endpoint and returns its shutdown function, which flushes
// pending spans. If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := NewTracerProvider(exp, service)
	otel.SetTracerProvider(tp)
	log.Infof("exporting traces to %s", endpoint)
	return tp.Shutdown, nil
}

// NewTracerProvider returns a batching tracer provider for exp tagged with
// the service name.
func NewTracerProvider(exp sdktrace.SpanExporter, service string) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
}

// MetricsHandler serves the default Prometheus registry, which holds the
// parser's metrics.
func MetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// ServeMetrics serves MetricsHandler on addr until ctx is done. It returns
// once the listener is bound; listening errors after that are logged.
func ServeMetrics(ctx context.Context, addr string) (func(context.Context) error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{
		Handler:           MetricsHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server: %s", err)
		}
	}()
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	log.Infof("serving metrics on http://%s/metrics", ln.Addr())
	return srv.Shutdown, nil
}
