package observability

import (
	"context"
	"fmt"

	"github.com/railzwaylabs/subtelemetry/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func otelResource(cfg config.OtelConfig) *resource.Resource {
	return resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))
}

func newSpanExporter(ctx context.Context, cfg config.OtelConfig) (sdktrace.SpanExporter, error) {
	if cfg.Protocol == "http" {
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.Endpoint),
			otlptracehttp.WithInsecure(),
		)
	}
	return otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
}

func newMetricExporter(ctx context.Context, cfg config.OtelConfig) (sdkmetric.Exporter, error) {
	if cfg.Protocol == "http" {
		return otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(cfg.Endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	}
	return otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
}

// RegisterTracerProvider installs an OTLP tracer provider as the global
// provider when an endpoint is configured. Without one the otel no-op provider stays in place.
func RegisterTracerProvider(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) error {
	if cfg.Otel.Endpoint == "" {
		return nil
	}

	exporter, err := newSpanExporter(context.Background(), cfg.Otel)
	if err != nil {
		return fmt.Errorf("create otlp span exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(otelResource(cfg.Otel)),
	)
	otel.SetTracerProvider(provider)

	log.Info("otel tracing enabled",
		zap.String("endpoint", cfg.Otel.Endpoint),
		zap.String("protocol", cfg.Otel.Protocol),
	)

	lc.Append(fx.StopHook(func(ctx context.Context) error {
		return provider.Shutdown(ctx)
	}))
	return nil
}

// NewMeterProvider pushes otel metrics over OTLP when an endpoint is
// configured and discards them otherwise.
func NewMeterProvider(lc fx.Lifecycle, cfg config.Config) (metric.MeterProvider, error) {
	if cfg.Otel.Endpoint == "" {
		return noop.NewMeterProvider(), nil
	}

	exporter, err := newMetricExporter(context.Background(), cfg.Otel)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(otelResource(cfg.Otel)),
	)
	otel.SetMeterProvider(provider)

	lc.Append(fx.StopHook(func(ctx context.Context) error {
		return provider.Shutdown(ctx)
	}))
	return provider, nil
}
