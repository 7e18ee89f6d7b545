// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package tracing

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName = "logicapps-mcp"
	tracerName  = "github.com/azure/logicapps-mcp"
)

// Attribute keys recorded on tool spans.
const (
	AttrToolName       = attribute.Key("tool.name")
	AttrSubscriptionId = attribute.Key("azure.subscription_id")
	AttrResourceGroup  = attribute.Key("azure.resource_group")
	AttrLogicApp       = attribute.Key("logicapp.name")
	AttrBackend        = attribute.Key("logicapp.backend")
)

// Options selects the span exporter. OtlpEndpoint takes precedence over File; with neither set spans are not
// exported.
type Options struct {
	// OTLP/HTTP collector URL, e.g. http://localhost:4318
	OtlpEndpoint string
	// Path of a file receiving spans as JSON lines
	File           string
	ServiceVersion string
}

// Start initializes the global tracer provider and returns the function that flushes and stops it.
func Start(ctx context.Context, options Options) (func(context.Context) error, error) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	exporter, closer, err := newExporter(ctx, options)
	if err != nil {
		return nil, err
	}

	if exporter == nil {
		return func(context.Context) error { return nil }, nil
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", options.ServiceVersion),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return func(ctx context.Context) error {
		err := provider.Shutdown(ctx)
		if closer != nil {
			if closeErr := closer.Close(); closeErr != nil {
				log.Printf("failed to close trace file: %v", closeErr)
			}
		}

		return err
	}, nil
}

func newExporter(ctx context.Context, options Options) (sdktrace.SpanExporter, io.Closer, error) {
	switch {
	case options.OtlpEndpoint != "":
		exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(options.OtlpEndpoint))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
		}

		log.Printf("exporting traces to %s", options.OtlpEndpoint)
		return exporter, nil, nil
	case options.File != "":
		file, err := os.OpenFile(options.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("opening trace file: %w", err)
		}

		exporter, err := stdouttrace.New(stdouttrace.WithWriter(file))
		if err != nil {
			file.Close()
			return nil, nil, fmt.Errorf("failed to create file exporter: %w", err)
		}

		log.Printf("writing traces to %s", options.File)
		return exporter, file, nil
	default:
		return nil, nil, nil
	}
}

// Tracer returns the tracer used for server spans.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
