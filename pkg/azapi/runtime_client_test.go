// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/azure/logicapps-mcp/test/mocks"
	"github.com/stretchr/testify/require"
)

func TestRuntimeClientRequest(t *testing.T) {
	mockContext := mocks.NewMockContext(context.Background())
	client := NewRuntimeClient(mockContext.CoreClientOptions)

	mockContext.HttpClient.When(func(request *http.Request) bool {
		return request.URL.Host == "la-std.azurewebsites.net"
	}).RespondFn(func(request *http.Request) (*http.Response, error) {
		require.Equal(t, "host-key", request.Header.Get(functionsKeyHeader))
		require.Empty(t, request.Header.Get("Authorization"))
		require.Equal(t,
			"/runtime/webhooks/workflow/api/management/workflows/orders/runs",
			request.URL.Path)
		require.Equal(t, StandardRuntimeApiVersion, request.URL.Query().Get("api-version"))

		return mocks.CreateHttpResponseWithBody(request, http.StatusOK, map[string]any{
			"value": []any{map[string]any{"name": "run-1"}},
		})
	})

	items, err := client.ListAll(
		*mockContext.Context,
		"la-std.azurewebsites.net",
		"host-key",
		ManagementPath("workflows", "orders", "runs"),
		&RequestOptions{ApiVersion: StandardRuntimeApiVersion},
	)

	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestPaths(t *testing.T) {
	require.Equal(t, "/runtime/webhooks/workflow/api/management/workflows", ManagementPath("workflows"))
	require.Equal(t, "/admin/vfs/site/wwwroot/my%20flow/workflow.json", VfsPath("my flow", "workflow.json"))
	require.Equal(t, "https://la-std.azurewebsites.net", hostUrl("la-std.azurewebsites.net"))
	require.Equal(t, "http://localhost:7071", hostUrl("http://localhost:7071/"))
}

func TestWithHostKeyDoesNotMutateOptions(t *testing.T) {
	options := &RequestOptions{Headers: map[string]string{"If-Match": "*"}}

	signed := withHostKey(options, "key")

	require.Equal(t, "key", signed.Headers[functionsKeyHeader])
	require.Equal(t, "*", signed.Headers["If-Match"])
	require.NotContains(t, options.Headers, functionsKeyHeader)
}
