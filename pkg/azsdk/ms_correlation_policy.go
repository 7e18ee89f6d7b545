// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azsdk

import (
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"go.opentelemetry.io/otel/trace"
)

// See https://github.com/Azure/azure-resource-manager-rpc/blob/master/v1.0/common-api-details.md#client-request-headers
const cMsCorrelationIdHeader = "x-ms-correlation-request-id"

type msCorrelationPolicy struct{}

// NewMsCorrelationPolicy creates a policy that sets the Microsoft correlation ID header on HTTP requests.
//
// The correlation ID is the trace id of the span in the request's context, so every ARM call made while serving one
// tool invocation shares an id. Requests without a trace context pass through untouched.
func NewMsCorrelationPolicy() policy.Policy {
	return &msCorrelationPolicy{}
}

func (p *msCorrelationPolicy) Do(req *policy.Request) (*http.Response, error) {
	spanCtx := trace.SpanContextFromContext(req.Raw().Context())
	if spanCtx.HasTraceID() {
		req.Raw().Header.Set(cMsCorrelationIdHeader, spanCtx.TraceID().String())
	}

	return req.Next()
}
