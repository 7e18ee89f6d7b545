// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package tracing

import (
	"context"
	"os"

	"go.opentelemetry.io/otel/propagation"
)

const (
	traceparentKey = "traceparent"
	tracestateKey  = "tracestate"

	// https://github.com/open-telemetry/opentelemetry-specification/blob/main/specification/context/env-carriers.md

	traceparentEnv = "TRACEPARENT"
	tracestateEnv  = "TRACESTATE"
)

// ContextFromEnv initializes the tracing context from environment variables, so spans of a server launched by a
// traced MCP client join the client's trace.
func ContextFromEnv(ctx context.Context) context.Context {
	parent := os.Getenv(traceparentEnv)
	state := os.Getenv(tracestateEnv)

	if parent != "" {
		tc := propagation.TraceContext{}
		return tc.Extract(ctx, propagation.MapCarrier{
			traceparentKey: parent,
			tracestateKey:  state})
	}

	return ctx
}
