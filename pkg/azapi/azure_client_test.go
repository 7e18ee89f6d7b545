// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/azure/logicapps-mcp/test/mocks"
	"github.com/stretchr/testify/require"
)

const (
	testSubscriptionId = "00000000-0000-0000-0000-000000000001"
	testResourceGroup  = "rg-orders"
)

func newTestAzureClient(mockContext *mocks.MockContext) *AzureClient {
	return NewAzureClient(mockContext.SubscriptionCredentialProvider, mockContext.ArmClientOptions)
}

func TestRequest(t *testing.T) {
	t.Run("SendsApiVersionAndBody", func(t *testing.T) {
		mockContext := mocks.NewMockContext(context.Background())
		client := newTestAzureClient(mockContext)

		var received map[string]any
		mockContext.HttpClient.When(func(request *http.Request) bool {
			return request.Method == http.MethodPut &&
				strings.HasSuffix(request.URL.Path, "/providers/Microsoft.Logic/workflows/orders")
		}).RespondFn(func(request *http.Request) (*http.Response, error) {
			require.Equal(t, LogicApiVersion, request.URL.Query().Get("api-version"))
			require.Equal(t, "Bearer ABC123", request.Header.Get("Authorization"))

			body, err := io.ReadAll(request.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(body, &received))

			return mocks.CreateHttpResponseWithBody(request, http.StatusCreated, `{"name":"orders"}`)
		})

		body, err := client.Request(
			*mockContext.Context,
			LogicWorkflowPath(testSubscriptionId, testResourceGroup, "orders"),
			&RequestOptions{
				Method:     http.MethodPut,
				ApiVersion: LogicApiVersion,
				Body:       map[string]any{"location": "westus"},
			},
		)

		require.NoError(t, err)
		require.JSONEq(t, `{"name":"orders"}`, string(body))
		require.Equal(t, "westus", received["location"])
	})

	t.Run("ErrorResponse", func(t *testing.T) {
		mockContext := mocks.NewMockContext(context.Background())
		client := newTestAzureClient(mockContext)

		mockContext.HttpClient.When(func(request *http.Request) bool {
			return true
		}).RespondFn(func(request *http.Request) (*http.Response, error) {
			return mocks.CreateArmErrorResponse(request, http.StatusForbidden, "AuthorizationFailed")
		})

		_, err := client.Request(*mockContext.Context, "/subscriptions/"+testSubscriptionId, nil)

		var responseErr *azcore.ResponseError
		require.True(t, errors.As(err, &responseErr))
		require.Equal(t, http.StatusForbidden, responseErr.StatusCode)
		require.Equal(t, "AuthorizationFailed", responseErr.ErrorCode)
	})

	t.Run("RelativePath", func(t *testing.T) {
		mockContext := mocks.NewMockContext(context.Background())
		client := newTestAzureClient(mockContext)

		_, err := client.Request(*mockContext.Context, "subscriptions", nil)
		require.Error(t, err)
		require.Empty(t, mockContext.HttpClient.Requests())
	})
}

func TestListAll(t *testing.T) {
	path := fmt.Sprintf("/subscriptions/%s/resourceGroups/%s/providers/Microsoft.Logic/workflows/orders/runs",
		testSubscriptionId, testResourceGroup)

	registerPages := func(mockContext *mocks.MockContext) {
		mockContext.HttpClient.When(func(request *http.Request) bool {
			return strings.HasSuffix(request.URL.Path, "/runs") && request.URL.Query().Get("page") == ""
		}).RespondFn(func(request *http.Request) (*http.Response, error) {
			nextLink := "https://management.azure.com" + path + "?api-version=2019-05-01&page=2"
			return mocks.CreateHttpResponseWithBody(request, http.StatusOK, map[string]any{
				"value":    []any{map[string]any{"name": "run-1"}, map[string]any{"name": "run-2"}},
				"nextLink": nextLink,
			})
		})

		mockContext.HttpClient.When(func(request *http.Request) bool {
			return strings.HasSuffix(request.URL.Path, "/runs") && request.URL.Query().Get("page") == "2"
		}).RespondFn(func(request *http.Request) (*http.Response, error) {
			return mocks.CreateHttpResponseWithBody(request, http.StatusOK, map[string]any{
				"value": []any{map[string]any{"name": "run-3"}},
			})
		})
	}

	t.Run("FollowsNextLink", func(t *testing.T) {
		mockContext := mocks.NewMockContext(context.Background())
		registerPages(mockContext)
		client := newTestAzureClient(mockContext)

		items, err := client.ListAll(*mockContext.Context, path, &RequestOptions{ApiVersion: LogicApiVersion})
		require.NoError(t, err)
		require.Len(t, items, 3)
		require.JSONEq(t, `{"name":"run-3"}`, string(items[2]))
	})

	t.Run("StopsAtMaxItems", func(t *testing.T) {
		mockContext := mocks.NewMockContext(context.Background())
		registerPages(mockContext)
		client := newTestAzureClient(mockContext)

		items, err := client.ListAll(*mockContext.Context, path, &RequestOptions{
			ApiVersion: LogicApiVersion,
			MaxItems:   2,
		})
		require.NoError(t, err)
		require.Len(t, items, 2)
		require.Len(t, mockContext.HttpClient.Requests(), 1)
	})
}

func TestGetLogicWorkflow(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		mockContext := mocks.NewMockContext(context.Background())
		client := newTestAzureClient(mockContext)

		mockContext.HttpClient.When(func(request *http.Request) bool {
			return request.Method == http.MethodGet &&
				strings.HasSuffix(request.URL.Path, "/providers/Microsoft.Logic/workflows/orders")
		}).RespondFn(func(request *http.Request) (*http.Response, error) {
			return mocks.CreateHttpResponseWithBody(request, http.StatusOK, LogicWorkflow{
				Name:     "orders",
				Location: "westus",
				Properties: LogicWorkflowProperties{
					State:      "Enabled",
					Definition: json.RawMessage(`{"triggers":{}}`),
				},
			})
		})

		workflow, err := client.GetLogicWorkflow(*mockContext.Context, testSubscriptionId, testResourceGroup, "orders")
		require.NoError(t, err)
		require.Equal(t, "orders", workflow.Name)
		require.Equal(t, "Enabled", workflow.Properties.State)
		require.JSONEq(t, `{"triggers":{}}`, string(workflow.Properties.Definition))
	})

	t.Run("NotFound", func(t *testing.T) {
		mockContext := mocks.NewMockContext(context.Background())
		client := newTestAzureClient(mockContext)

		mockContext.HttpClient.When(func(request *http.Request) bool {
			return true
		}).RespondFn(func(request *http.Request) (*http.Response, error) {
			return mocks.CreateArmErrorResponse(request, http.StatusNotFound, "ResourceNotFound")
		})

		_, err := client.GetLogicWorkflow(*mockContext.Context, testSubscriptionId, testResourceGroup, "missing")

		var responseErr *azcore.ResponseError
		require.True(t, errors.As(err, &responseErr))
		require.Equal(t, http.StatusNotFound, responseErr.StatusCode)
	})
}

func TestSetLogicWorkflowEnabled(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		t.Run(fmt.Sprint(enabled), func(t *testing.T) {
			mockContext := mocks.NewMockContext(context.Background())
			client := newTestAzureClient(mockContext)

			action := "/disable"
			if enabled {
				action = "/enable"
			}

			expr := mockContext.HttpClient.When(func(request *http.Request) bool {
				return request.Method == http.MethodPost && strings.HasSuffix(request.URL.Path, action)
			}).RespondFn(func(request *http.Request) (*http.Response, error) {
				return mocks.CreateEmptyHttpResponse(request, http.StatusOK)
			})

			err := client.SetLogicWorkflowEnabled(
				*mockContext.Context, testSubscriptionId, testResourceGroup, "orders", enabled)
			require.NoError(t, err)
			require.Equal(t, 1, expr.CallCount())
		})
	}
}

func TestSubscriptionFromPath(t *testing.T) {
	require.Equal(t, "abc", subscriptionFromPath("/subscriptions/abc/resourceGroups/rg"))
	require.Equal(t, "abc", subscriptionFromPath("/Subscriptions/abc"))
	require.Equal(t, "", subscriptionFromPath("/providers/Microsoft.ResourceGraph/resources"))
}
