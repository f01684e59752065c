// Package tracing installs the process-wide OpenTelemetry tracer provider.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"casework/internal/platform/config"
)

// Setup installs a sampling tracer provider and the W3C propagators. When
// tracing is disabled the global no-op provider stays in place. The returned
// func flushes and stops the provider.
func Setup(cfg config.TracingConfig, serviceName string, opts ...sdktrace.TracerProviderOption) func(context.Context) error {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }
	}
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	base := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	}
	tp := sdktrace.NewTracerProvider(append(base, opts...)...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown
}
