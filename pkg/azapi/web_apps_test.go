// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/azure/logicapps-mcp/test/mocks"
	"github.com/stretchr/testify/require"
)

func TestGetSite(t *testing.T) {
	mockContext := mocks.NewMockContext(context.Background())
	client := newTestAzureClient(mockContext)

	mockContext.HttpClient.When(func(request *http.Request) bool {
		return request.Method == http.MethodGet && strings.HasSuffix(request.URL.Path, "/providers/Microsoft.Web/sites/la-std")
	}).RespondFn(func(request *http.Request) (*http.Response, error) {
		return mocks.CreateHttpResponseWithBody(request, http.StatusOK, map[string]any{
			"id":       "/subscriptions/" + testSubscriptionId + "/resourceGroups/" + testResourceGroup + "/providers/Microsoft.Web/sites/la-std",
			"name":     "la-std",
			"kind":     "functionapp,workflowapp",
			"location": "westus",
			"properties": map[string]any{
				"defaultHostName": "la-std.azurewebsites.net",
				"state":           "Running",
			},
		})
	})

	site, err := client.GetSite(*mockContext.Context, testSubscriptionId, testResourceGroup, "la-std")
	require.NoError(t, err)
	require.Equal(t, "functionapp,workflowapp", site.Kind)
	require.Equal(t, "la-std.azurewebsites.net", site.DefaultHostName)
	require.Equal(t, testResourceGroup, site.ResourceGroup)
}

func TestGetHostMasterKey(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockContext := mocks.NewMockContext(context.Background())
		client := newTestAzureClient(mockContext)

		mockContext.HttpClient.When(func(request *http.Request) bool {
			return request.Method == http.MethodPost && strings.HasSuffix(request.URL.Path, "/host/default/listkeys")
		}).RespondFn(func(request *http.Request) (*http.Response, error) {
			return mocks.CreateHttpResponseWithBody(request, http.StatusOK, map[string]any{"masterKey": "secret"})
		})

		key, err := client.GetHostMasterKey(*mockContext.Context, testSubscriptionId, testResourceGroup, "la-std")
		require.NoError(t, err)
		require.Equal(t, "secret", key)
	})

	t.Run("MissingKey", func(t *testing.T) {
		mockContext := mocks.NewMockContext(context.Background())
		client := newTestAzureClient(mockContext)

		mockContext.HttpClient.When(func(request *http.Request) bool {
			return strings.HasSuffix(request.URL.Path, "/host/default/listkeys")
		}).RespondFn(func(request *http.Request) (*http.Response, error) {
			return mocks.CreateHttpResponseWithBody(request, http.StatusOK, map[string]any{})
		})

		_, err := client.GetHostMasterKey(*mockContext.Context, testSubscriptionId, testResourceGroup, "la-std")
		require.Error(t, err)
	})
}

func TestSetWorkflowFlowState(t *testing.T) {
	mockContext := mocks.NewMockContext(context.Background())
	client := newTestAzureClient(mockContext)

	var mu sync.Mutex
	settings := map[string]string{"FUNCTIONS_EXTENSION_VERSION": "~4"}

	mockContext.HttpClient.When(func(request *http.Request) bool {
		return request.Method == http.MethodPost && strings.HasSuffix(request.URL.Path, "/config/appsettings/list")
	}).RespondFn(func(request *http.Request) (*http.Response, error) {
		mu.Lock()
		defer mu.Unlock()

		return mocks.CreateHttpResponseWithBody(request, http.StatusOK, map[string]any{"properties": settings})
	})

	mockContext.HttpClient.When(func(request *http.Request) bool {
		return request.Method == http.MethodPut && strings.HasSuffix(request.URL.Path, "/config/appsettings")
	}).RespondFn(func(request *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(request.Body)
		if err != nil {
			return nil, err
		}

		var updated struct {
			Properties map[string]string `json:"properties"`
		}
		if err := json.Unmarshal(body, &updated); err != nil {
			return nil, err
		}

		mu.Lock()
		settings = updated.Properties
		mu.Unlock()

		return mocks.CreateHttpResponseWithBody(request, http.StatusOK, map[string]any{"properties": updated.Properties})
	})

	workflows := []string{"orders", "invoices", "refunds"}
	errs := make([]error, len(workflows))

	var wg sync.WaitGroup
	for i, workflow := range workflows {
		wg.Add(1)
		go func(i int, workflow string) {
			defer wg.Done()
			errs[i] = client.SetWorkflowFlowState(
				context.Background(), testSubscriptionId, testResourceGroup, "la-std", workflow, FlowStateDisabled)
		}(i, workflow)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, map[string]string{
		"FUNCTIONS_EXTENSION_VERSION":  "~4",
		"Workflows.orders.FlowState":   FlowStateDisabled,
		"Workflows.invoices.FlowState": FlowStateDisabled,
		"Workflows.refunds.FlowState":  FlowStateDisabled,
	}, settings)
}

func TestResourceGroupFromId(t *testing.T) {
	require.Equal(t, "rg", ResourceGroupFromId("/subscriptions/s/resourceGroups/rg/providers/Microsoft.Web/sites/a"))
	require.Equal(t, "RG-Orders", ResourceGroupFromId("/subscriptions/s/resourcegroups/RG-Orders/providers/x/y/z"))
	require.Equal(t, "", ResourceGroupFromId("/subscriptions/s"))
}
