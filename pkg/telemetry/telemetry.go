// Package telemetry installs the OpenTelemetry tracer and meter providers
// used by the service. When disabled the global no-op providers stay in place.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/agent-registry/pkg/lifecycle"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const shutdownTimeout = 5 * time.Second

// System owns the installed providers.
type System interface {
	Start(lc *lifecycle.Coordinator) error
}

type telemetry struct {
	cfg     *Config
	version string
	logger  *slog.Logger
}

// New creates a telemetry system. Providers are installed by Start.
func New(cfg *Config, version string, logger *slog.Logger) System {
	return &telemetry{
		cfg:     cfg,
		version: version,
		logger:  logger.With("system", "telemetry"),
	}
}

// Start installs global providers and flushes them on shutdown.
func (t *telemetry) Start(lc *lifecycle.Coordinator) error {
	if !t.cfg.Enabled {
		t.logger.Debug("telemetry disabled")
		return nil
	}

	res, err := resource.New(
		lc.Context(),
		resource.WithAttributes(
			semconv.ServiceName(t.cfg.ServiceName),
			semconv.ServiceVersion(t.version),
		),
	)
	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}

	tp, err := t.tracerProvider(lc.Context(), res)
	if err != nil {
		return err
	}

	metricExporter, err := stdoutmetric.New()
	if err != nil {
		return fmt.Errorf("create metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(time.Minute))),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.logger.Info("telemetry started", "exporter", t.cfg.Exporter)

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx)); err != nil {
			t.logger.Error("telemetry shutdown error", "error", err)
			return
		}
		t.logger.Info("telemetry flushed")
	})

	return nil
}

func (t *telemetry) tracerProvider(ctx context.Context, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	var (
		exporter sdktrace.SpanExporter
		err      error
	)

	switch t.cfg.Exporter {
	case ExporterOTLP:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(t.cfg.OTLPEndpoint)}
		if t.cfg.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)
	default:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(time.Second)),
		sdktrace.WithResource(res),
	), nil
}
