// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logicapps

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/azure/logicapps-mcp/internal/tracing"
	"github.com/azure/logicapps-mcp/pkg/azapi"
	"github.com/azure/logicapps-mcp/test/mocks"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type mockProber struct {
	mock.Mock
}

func (p *mockProber) GetLogicWorkflow(
	ctx context.Context,
	subscriptionId string,
	resourceGroup string,
	name string,
) (*azapi.LogicWorkflow, error) {
	args := p.Called(ctx, subscriptionId, resourceGroup, name)
	workflow, _ := args.Get(0).(*azapi.LogicWorkflow)
	return workflow, args.Error(1)
}

func (p *mockProber) GetSite(
	ctx context.Context,
	subscriptionId string,
	resourceGroup string,
	name string,
) (*azapi.Site, error) {
	args := p.Called(ctx, subscriptionId, resourceGroup, name)
	site, _ := args.Get(0).(*azapi.Site)
	return site, args.Error(1)
}

func armError(t *testing.T, statusCode int, code string) error {
	request, err := http.NewRequest(http.MethodGet, "https://management.azure.com/", nil)
	require.NoError(t, err)

	response, err := mocks.CreateArmErrorResponse(request, statusCode, code)
	require.NoError(t, err)

	return runtime.NewResponseError(response)
}

func TestResolveConsumption(t *testing.T) {
	prober := &mockProber{}
	prober.On("GetLogicWorkflow", mock.Anything, "sub", "rg", "la-orders").
		Return(&azapi.LogicWorkflow{Name: "la-orders"}, nil).Once()

	resolver := NewBackendResolver(NewResourceCache(clock.NewMock(), 0), prober)

	app, err := resolver.Resolve(context.Background(), AppRef{SubscriptionId: "sub", ResourceGroup: "rg", Name: "la-orders"})
	require.NoError(t, err)
	require.IsType(t, ConsumptionApp{}, app)
	require.Equal(t, "la-orders", app.Ref().Name)

	// Served from the cache, even with different casing.
	kind, err := resolver.DetectBackendKind(context.Background(), "SUB", "RG", "LA-Orders")
	require.NoError(t, err)
	require.Equal(t, ConsumptionBackend, kind)

	prober.AssertExpectations(t)
	prober.AssertNotCalled(t, "GetSite", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveStandard(t *testing.T) {
	prober := &mockProber{}
	prober.On("GetLogicWorkflow", mock.Anything, "sub", "rg", "la-std").
		Return(nil, armError(t, http.StatusNotFound, "ResourceNotFound")).Once()
	prober.On("GetSite", mock.Anything, "sub", "rg", "la-std").
		Return(&azapi.Site{Name: "la-std", Kind: "functionapp,linux,workflowapp"}, nil).Once()

	resolver := NewBackendResolver(NewResourceCache(clock.NewMock(), 0), prober)
	ref := AppRef{SubscriptionId: "sub", ResourceGroup: "rg", Name: "la-std"}

	for range 2 {
		app, err := resolver.Resolve(context.Background(), ref)
		require.NoError(t, err)
		require.Equal(t, StandardApp{AppRef: ref}, app)
	}

	prober.AssertExpectations(t)
}

func TestResolveNotFound(t *testing.T) {
	t.Run("NeitherBackend", func(t *testing.T) {
		prober := &mockProber{}
		prober.On("GetLogicWorkflow", mock.Anything, "sub", "rg", "missing").
			Return(nil, armError(t, http.StatusNotFound, "ResourceNotFound"))
		prober.On("GetSite", mock.Anything, "sub", "rg", "missing").
			Return(nil, armError(t, http.StatusNotFound, "ResourceNotFound"))

		resolver := NewBackendResolver(NewResourceCache(clock.NewMock(), 0), prober)

		_, err := resolver.Resolve(context.Background(), AppRef{SubscriptionId: "sub", ResourceGroup: "rg", Name: "missing"})

		var notFound *ResourceNotFoundError
		require.True(t, errors.As(err, &notFound))
		require.Equal(t, "missing", notFound.AppName)
		require.Equal(t, "rg", notFound.ResourceGroup)
	})

	t.Run("SiteIsNotWorkflowApp", func(t *testing.T) {
		prober := &mockProber{}
		prober.On("GetLogicWorkflow", mock.Anything, "sub", "rg", "web").
			Return(nil, armError(t, http.StatusNotFound, "ResourceNotFound"))
		prober.On("GetSite", mock.Anything, "sub", "rg", "web").
			Return(&azapi.Site{Name: "web", Kind: "app,linux"}, nil)

		cache := NewResourceCache(clock.NewMock(), 0)
		resolver := NewBackendResolver(cache, prober)
		ref := AppRef{SubscriptionId: "sub", ResourceGroup: "rg", Name: "web"}

		_, err := resolver.Resolve(context.Background(), ref)

		var notFound *ResourceNotFoundError
		require.True(t, errors.As(err, &notFound))

		_, has := cache.GetBackendKind(ref)
		require.False(t, has)
	})
}

func TestResolveStopsOnOtherFailures(t *testing.T) {
	prober := &mockProber{}
	prober.On("GetLogicWorkflow", mock.Anything, "sub", "rg", "la").
		Return(nil, armError(t, http.StatusUnauthorized, "InvalidAuthenticationToken"))

	resolver := NewBackendResolver(NewResourceCache(clock.NewMock(), 0), prober)

	_, err := resolver.Resolve(context.Background(), AppRef{SubscriptionId: "sub", ResourceGroup: "rg", Name: "la"})
	require.Error(t, err)
	require.False(t, IsNotFound(err))

	var notFound *ResourceNotFoundError
	require.False(t, errors.As(err, &notFound))

	prober.AssertNotCalled(t, "GetSite", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveMissingResourceGroup(t *testing.T) {
	prober := &mockProber{}
	prober.On("GetLogicWorkflow", mock.Anything, "sub", "rg-gone", "la").
		Return(nil, armError(t, http.StatusNotFound, "ResourceGroupNotFound"))

	resolver := NewBackendResolver(NewResourceCache(clock.NewMock(), 0), prober)

	_, err := resolver.Resolve(context.Background(), AppRef{SubscriptionId: "sub", ResourceGroup: "rg-gone", Name: "la"})
	require.ErrorContains(t, err, "ResourceGroupNotFound")

	var notFound *ResourceNotFoundError
	require.False(t, errors.As(err, &notFound))

	prober.AssertNotCalled(t, "GetSite", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveRecordsBackendOnSpan(t *testing.T) {
	prober := &mockProber{}
	prober.On("GetLogicWorkflow", mock.Anything, "sub", "rg", "la-std").
		Return(nil, armError(t, http.StatusNotFound, "ResourceNotFound"))
	prober.On("GetSite", mock.Anything, "sub", "rg", "la-std").
		Return(&azapi.Site{Name: "la-std", Kind: "functionapp,workflowapp"}, nil)

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	ctx, span := provider.Tracer("test").Start(context.Background(), "list_workflows")
	resolver := NewBackendResolver(NewResourceCache(clock.NewMock(), 0), prober)
	_, err := resolver.Resolve(ctx, AppRef{SubscriptionId: "sub", ResourceGroup: "rg", Name: "la-std"})
	require.NoError(t, err)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	require.Contains(t, ended[0].Attributes(), tracing.AttrBackend.String(string(StandardBackend)))
}

func TestResolveAfterClear(t *testing.T) {
	prober := &mockProber{}
	prober.On("GetLogicWorkflow", mock.Anything, "sub", "rg", "la").
		Return(&azapi.LogicWorkflow{Name: "la"}, nil).Twice()

	cache := NewResourceCache(clock.NewMock(), 0)
	resolver := NewBackendResolver(cache, prober)
	ref := AppRef{SubscriptionId: "sub", ResourceGroup: "rg", Name: "la"}

	_, err := resolver.Resolve(context.Background(), ref)
	require.NoError(t, err)

	cache.Clear("", "", "")

	_, err = resolver.Resolve(context.Background(), ref)
	require.NoError(t, err)

	prober.AssertNumberOfCalls(t, "GetLogicWorkflow", 2)
}

func TestIsWorkflowAppKind(t *testing.T) {
	require.True(t, IsWorkflowAppKind("functionapp,workflowapp"))
	require.True(t, IsWorkflowAppKind("functionapp,linux,container,WorkflowApp"))
	require.False(t, IsWorkflowAppKind("functionapp"))
	require.False(t, IsWorkflowAppKind(""))
}

func TestIsNotFound(t *testing.T) {
	require.True(t, IsNotFound(armError(t, http.StatusNotFound, "ResourceNotFound")))
	require.True(t, IsNotFound(armError(t, http.StatusNotFound, "resourcenotfound")))
	require.True(t, IsNotFound(armError(t, http.StatusNotFound, "NotFound")))
	require.True(t, IsNotFound(armError(t, http.StatusNotFound, "")))
	require.False(t, IsNotFound(armError(t, http.StatusNotFound, "ResourceGroupNotFound")))
	require.False(t, IsNotFound(armError(t, http.StatusNotFound, "SubscriptionNotFound")))
	require.False(t, IsNotFound(armError(t, http.StatusForbidden, "AuthorizationFailed")))
	require.False(t, IsNotFound(errors.New("boom")))
}
