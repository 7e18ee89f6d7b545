// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azsdk

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/azure/logicapps-mcp/test/mocks"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func newTestPipeline(t *testing.T, mockContext *mocks.MockContext, policies ...policy.Policy) runtime.Pipeline {
	t.Helper()

	return runtime.NewPipeline("test", "1.0.0", runtime.PipelineOptions{}, &policy.ClientOptions{
		Transport:       mockContext.HttpClient,
		PerCallPolicies: policies,
		Retry:           policy.RetryOptions{MaxRetries: -1},
	})
}

func sendTestRequest(t *testing.T, ctx context.Context, pipeline runtime.Pipeline) (*http.Response, error) {
	t.Helper()

	req, err := runtime.NewRequest(ctx, http.MethodGet, "https://management.azure.com/subscriptions")
	require.NoError(t, err)

	return pipeline.Do(req)
}

func TestUserAgentPolicy(t *testing.T) {
	mockContext := mocks.NewMockContext(context.Background())

	var userAgent string
	mockContext.HttpClient.When(func(request *http.Request) bool {
		return true
	}).RespondFn(func(request *http.Request) (*http.Response, error) {
		userAgent = request.Header.Get(userAgentHeaderName)
		return mocks.CreateEmptyHttpResponse(request, http.StatusOK)
	})

	pipeline := newTestPipeline(t, mockContext, NewUserAgentPolicy("logicapps-mcp/1.0.0"))
	_, err := sendTestRequest(t, *mockContext.Context, pipeline)
	require.NoError(t, err)
	require.Contains(t, userAgent, "logicapps-mcp/1.0.0")
}

func TestMsCorrelationPolicy(t *testing.T) {
	traceId, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanId, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	tests := []struct {
		name     string
		ctx      context.Context
		expected string
	}{
		{
			name:     "NoTrace",
			ctx:      context.Background(),
			expected: "",
		},
		{
			name: "WithTrace",
			ctx: trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
				TraceID: traceId,
				SpanID:  spanId,
			})),
			expected: traceId.String(),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			mockContext := mocks.NewMockContext(test.ctx)

			var correlationId string
			mockContext.HttpClient.When(func(request *http.Request) bool {
				return true
			}).RespondFn(func(request *http.Request) (*http.Response, error) {
				correlationId = request.Header.Get(cMsCorrelationIdHeader)
				return mocks.CreateEmptyHttpResponse(request, http.StatusOK)
			})

			pipeline := newTestPipeline(t, mockContext, NewMsCorrelationPolicy())
			_, err := sendTestRequest(t, test.ctx, pipeline)
			require.NoError(t, err)
			require.Equal(t, test.expected, correlationId)
		})
	}
}

func TestRateLimitPolicy(t *testing.T) {
	t.Run("Admits", func(t *testing.T) {
		mockContext := mocks.NewMockContext(context.Background())
		expr := mockContext.HttpClient.When(func(request *http.Request) bool {
			return true
		}).RespondFn(func(request *http.Request) (*http.Response, error) {
			return mocks.CreateEmptyHttpResponse(request, http.StatusOK)
		})

		pipeline := newTestPipeline(t, mockContext, NewRateLimitPolicy(1000, 5))
		for i := 0; i < 3; i++ {
			_, err := sendTestRequest(t, context.Background(), pipeline)
			require.NoError(t, err)
		}

		require.Equal(t, 3, expr.CallCount())
	})

	t.Run("CancelledWhileWaiting", func(t *testing.T) {
		mockContext := mocks.NewMockContext(context.Background())
		expr := mockContext.HttpClient.When(func(request *http.Request) bool {
			return true
		}).RespondFn(func(request *http.Request) (*http.Response, error) {
			return mocks.CreateEmptyHttpResponse(request, http.StatusOK)
		})

		// One request per minute: the second call cannot be admitted before the deadline.
		pipeline := newTestPipeline(t, mockContext, NewRateLimitPolicy(1.0/60, 1))
		_, err := sendTestRequest(t, context.Background(), pipeline)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err = sendTestRequest(t, ctx, pipeline)
		require.Error(t, err)
		require.Equal(t, 1, expr.CallCount())
	})
}

func TestParseCloud(t *testing.T) {
	tests := []struct {
		name     string
		expected cloud.Configuration
	}{
		{name: "", expected: cloud.AzurePublic},
		{name: "AzurePublic", expected: cloud.AzurePublic},
		{name: "azurecloud", expected: cloud.AzurePublic},
		{name: "AzureChinaCloud", expected: cloud.AzureChina},
		{name: "AZUREUSGOVERNMENT", expected: cloud.AzureGovernment},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			actual, err := ParseCloud(test.name)
			require.NoError(t, err)
			require.Equal(t, test.expected, actual)
		})
	}

	_, err := ParseCloud("Mars")
	require.Error(t, err)
}

func TestResourceManagerScope(t *testing.T) {
	require.Equal(t, "https://management.azure.com/.default", ResourceManagerScope(cloud.AzurePublic))
	require.Equal(t, "https://management.chinacloudapi.cn/.default", ResourceManagerScope(cloud.AzureChina))
	require.Equal(t, "https://management.azure.com/.default", ResourceManagerScope(cloud.Configuration{}))
}
