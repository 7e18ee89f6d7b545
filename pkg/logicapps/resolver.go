// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logicapps

import (
	"context"
	"log"
	"strings"

	"github.com/azure/logicapps-mcp/internal/tracing"
	"github.com/azure/logicapps-mcp/pkg/azapi"
	"go.opentelemetry.io/otel/trace"
)

// workflowAppKind is the marker found in the kind of App Service sites that host Standard logic app workflows,
// e.g. "functionapp,workflowapp" or "functionapp,linux,container,workflowapp".
const workflowAppKind = "workflowapp"

// BackendProber fetches the resource descriptors used to decide which backend hosts an app.
type BackendProber interface {
	GetLogicWorkflow(
		ctx context.Context, subscriptionId string, resourceGroup string, name string) (*azapi.LogicWorkflow, error)
	GetSite(ctx context.Context, subscriptionId string, resourceGroup string, name string) (*azapi.Site, error)
}

// BackendResolver determines whether an app is a Consumption workflow or a Standard app and caches the answer.
type BackendResolver struct {
	cache  *ResourceCache
	prober BackendProber
}

func NewBackendResolver(cache *ResourceCache, prober BackendProber) *BackendResolver {
	return &BackendResolver{
		cache:  cache,
		prober: prober,
	}
}

// DetectBackendKind returns the backend kind hosting the app.
func (r *BackendResolver) DetectBackendKind(
	ctx context.Context,
	subscriptionId string,
	resourceGroup string,
	appName string,
) (BackendKind, error) {
	app, err := r.Resolve(ctx, AppRef{SubscriptionId: subscriptionId, ResourceGroup: resourceGroup, Name: appName})
	if err != nil {
		return "", err
	}

	return app.Kind(), nil
}

// Resolve classifies the app. The Consumption probe runs first; the Standard probe only runs when the Consumption
// probe reports the resource as not found. Any other probe failure is returned as is.
// The resolved backend is recorded on the span in ctx.
func (r *BackendResolver) Resolve(ctx context.Context, ref AppRef) (ResolvedApp, error) {
	app, err := r.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	trace.SpanFromContext(ctx).SetAttributes(tracing.AttrBackend.String(string(app.Kind())))

	return app, nil
}

func (r *BackendResolver) resolve(ctx context.Context, ref AppRef) (ResolvedApp, error) {
	if kind, has := r.cache.GetBackendKind(ref); has {
		return newResolvedApp(ref, kind), nil
	}

	log.Printf("probing backend kind for logic app '%s'", ref)

	_, err := r.prober.GetLogicWorkflow(ctx, ref.SubscriptionId, ref.ResourceGroup, ref.Name)
	if err == nil {
		return r.remember(ref, ConsumptionBackend), nil
	}

	if !IsNotFound(err) {
		return nil, err
	}

	site, err := r.prober.GetSite(ctx, ref.SubscriptionId, ref.ResourceGroup, ref.Name)
	if err != nil {
		if IsNotFound(err) {
			return nil, &ResourceNotFoundError{AppName: ref.Name, ResourceGroup: ref.ResourceGroup}
		}

		return nil, err
	}

	if !IsWorkflowAppKind(site.Kind) {
		log.Printf("site '%s' has kind '%s' and does not host workflows", ref, site.Kind)
		return nil, &ResourceNotFoundError{AppName: ref.Name, ResourceGroup: ref.ResourceGroup}
	}

	return r.remember(ref, StandardBackend), nil
}

// Remember records a backend kind learned elsewhere, e.g. while listing the apps of a resource group.
func (r *BackendResolver) Remember(ref AppRef, kind BackendKind) {
	r.cache.SetBackendKind(ref, kind)
}

func (r *BackendResolver) remember(ref AppRef, kind BackendKind) ResolvedApp {
	r.cache.SetBackendKind(ref, kind)
	log.Printf("logic app '%s' resolved to the %s backend", ref, kind)

	return newResolvedApp(ref, kind)
}

// IsWorkflowAppKind reports whether an App Service site kind denotes a Standard logic app.
func IsWorkflowAppKind(kind string) bool {
	return strings.Contains(strings.ToLower(kind), workflowAppKind)
}
