// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/azure/logicapps-mcp/test/mocks"
	"github.com/stretchr/testify/require"
)

func TestListSubscriptions(t *testing.T) {
	mockContext := mocks.NewMockContext(context.Background())
	client := newTestAzureClient(mockContext)

	mockContext.HttpClient.When(func(request *http.Request) bool {
		return request.Method == http.MethodGet && request.URL.Path == "/subscriptions"
	}).RespondFn(func(request *http.Request) (*http.Response, error) {
		return mocks.CreateHttpResponseWithBody(request, http.StatusOK, map[string]any{
			"value": []any{
				map[string]any{
					"subscriptionId": testSubscriptionId,
					"displayName":    "Contoso",
					"state":          "Enabled",
					"tenantId":       "tenant",
				},
			},
		})
	})

	subscriptions, err := client.ListSubscriptions(*mockContext.Context)
	require.NoError(t, err)
	require.Equal(t, []*Subscription{
		{Id: testSubscriptionId, Name: "Contoso", State: "Enabled", TenantId: "tenant"},
	}, subscriptions)
}

func TestListConnections(t *testing.T) {
	mockContext := mocks.NewMockContext(context.Background())
	client := newTestAzureClient(mockContext)

	mockContext.HttpClient.When(func(request *http.Request) bool {
		return request.Method == http.MethodGet && strings.HasSuffix(request.URL.Path, "/resourceGroups/"+testResourceGroup+"/resources")
	}).RespondFn(func(request *http.Request) (*http.Response, error) {
		require.Equal(t, "resourceType eq 'Microsoft.Web/connections'", request.URL.Query().Get("$filter"))

		return mocks.CreateHttpResponseWithBody(request, http.StatusOK, map[string]any{
			"value": []any{
				map[string]any{
					"id":       "/subscriptions/s/resourceGroups/rg/providers/Microsoft.Web/connections/office365",
					"name":     "office365",
					"type":     "Microsoft.Web/connections",
					"location": "westus",
				},
			},
		})
	})

	connections, err := client.ListConnections(*mockContext.Context, testSubscriptionId, testResourceGroup)
	require.NoError(t, err)
	require.Len(t, connections, 1)
	require.Equal(t, "office365", connections[0].Name)
	require.Equal(t, testResourceGroup, connections[0].ResourceGroup)
}

func TestSearchLogicApps(t *testing.T) {
	mockContext := mocks.NewMockContext(context.Background())
	client := newTestAzureClient(mockContext)

	mockContext.HttpClient.When(func(request *http.Request) bool {
		return request.Method == http.MethodPost &&
			strings.HasSuffix(request.URL.Path, "/providers/Microsoft.ResourceGraph/resources")
	}).RespondFn(func(request *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(request.Body)
		if err != nil {
			return nil, err
		}

		var query struct {
			Query         string   `json:"query"`
			Subscriptions []string `json:"subscriptions"`
		}
		if err := json.Unmarshal(body, &query); err != nil {
			return nil, err
		}

		require.Contains(t, query.Query, `name contains 'o\'brien'`)
		require.Equal(t, []string{testSubscriptionId}, query.Subscriptions)

		return mocks.CreateHttpResponseWithBody(request, http.StatusOK, map[string]any{
			"totalRecords":    1,
			"count":           1,
			"resultTruncated": "false",
			"data": []any{
				map[string]any{
					"id":             "/subscriptions/s/resourceGroups/rg/providers/Microsoft.Logic/workflows/o'brien-orders",
					"name":           "o'brien-orders",
					"type":           "microsoft.logic/workflows",
					"location":       "westus",
					"resourceGroup":  "rg",
					"subscriptionId": testSubscriptionId,
				},
			},
		})
	})

	resources, err := client.SearchLogicApps(*mockContext.Context, "o'brien", []string{testSubscriptionId})
	require.NoError(t, err)
	require.Len(t, resources, 1)
	require.Equal(t, "rg", resources[0].ResourceGroup)
}
