// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logicapps

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/azure/logicapps-mcp/pkg/azapi"
	"golang.org/x/sync/errgroup"
)

// Manager serves the logic app tools. It resolves each app to its backend once, then routes every operation to the
// Consumption (ARM) or Standard (site runtime) API.
type Manager struct {
	azure    *azapi.AzureClient
	runtime  *azapi.RuntimeClient
	cache    *ResourceCache
	resolver *BackendResolver
	access   *StandardAccessProvider
	batch    *BatchOperations
}

func NewManager(
	azure *azapi.AzureClient,
	runtime *azapi.RuntimeClient,
	cache *ResourceCache,
	batchConcurrency int,
) *Manager {
	resolver := NewBackendResolver(cache, azure)

	manager := &Manager{
		azure:    azure,
		runtime:  runtime,
		cache:    cache,
		resolver: resolver,
		access:   NewStandardAccessProvider(cache, azure),
	}
	manager.batch = NewBatchOperations(resolver, &workflowOperations{manager: manager}, batchConcurrency)

	return manager
}

// DetectBackendKind returns which backend hosts the app.
func (m *Manager) DetectBackendKind(
	ctx context.Context,
	subscriptionId string,
	resourceGroup string,
	appName string,
) (BackendKind, error) {
	return m.resolver.DetectBackendKind(ctx, subscriptionId, resourceGroup, appName)
}

// GetStandardAccess returns the runtime hostname and admin key of a Standard app.
func (m *Manager) GetStandardAccess(ctx context.Context, ref AppRef) (StandardAccess, error) {
	return m.access.GetStandardAccess(ctx, ref)
}

// ClearCache drops cached backend kinds and runtime access. Empty arguments widen the scope, see ResourceCache.Clear.
func (m *Manager) ClearCache(subscriptionId string, resourceGroup string, appName string) {
	m.cache.Clear(subscriptionId, resourceGroup, appName)
}

// SetCacheTTL changes the lifetime of entries cached from now on. A non-positive ttl restores DefaultCacheTTL.
func (m *Manager) SetCacheTTL(ttl time.Duration) {
	m.cache.SetTTL(ttl)
}

func (m *Manager) ListSubscriptions(ctx context.Context) ([]*azapi.Subscription, error) {
	return m.azure.ListSubscriptions(ctx)
}

// ListLogicApps lists the Consumption workflows and Standard apps of a resource group, or of the subscription when
// resourceGroup is empty. sku narrows the listing to one backend. Every listed app primes the backend cache.
func (m *Manager) ListLogicApps(
	ctx context.Context,
	subscriptionId string,
	resourceGroup string,
	sku BackendKind,
) ([]LogicAppSummary, error) {
	if sku != "" && sku != ConsumptionBackend && sku != StandardBackend {
		return nil, &InvalidParameterError{
			Parameter: "sku",
			Reason:    fmt.Sprintf("expected '%s' or '%s'", ConsumptionBackend, StandardBackend),
		}
	}

	var consumption, standard []LogicAppSummary

	group, groupCtx := errgroup.WithContext(ctx)
	if sku != StandardBackend {
		group.Go(func() error {
			workflows, err := m.azure.ListLogicWorkflows(groupCtx, subscriptionId, resourceGroup)
			if err != nil {
				return err
			}

			for _, workflow := range workflows {
				workflowGroup := azapi.ResourceGroupFromId(workflow.Id)
				if workflowGroup == "" {
					workflowGroup = resourceGroup
				}

				consumption = append(consumption, LogicAppSummary{
					Id:             workflow.Id,
					Name:           workflow.Name,
					ResourceGroup:  workflowGroup,
					SubscriptionId: subscriptionId,
					Location:       workflow.Location,
					Sku:            ConsumptionBackend,
					State:          workflow.Properties.State,
				})
			}

			return nil
		})
	}

	if sku != ConsumptionBackend {
		group.Go(func() error {
			sites, err := m.azure.ListSites(groupCtx, subscriptionId, resourceGroup)
			if err != nil {
				return err
			}

			for _, site := range sites {
				if !IsWorkflowAppKind(site.Kind) {
					continue
				}

				standard = append(standard, LogicAppSummary{
					Id:             site.Id,
					Name:           site.Name,
					ResourceGroup:  site.ResourceGroup,
					SubscriptionId: subscriptionId,
					Location:       site.Location,
					Sku:            StandardBackend,
					State:          site.State,
				})
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("listing logic apps: %w", err)
	}

	apps := append(consumption, standard...)
	m.remember(apps)
	sortApps(apps)

	return apps, nil
}

// SearchLogicApps finds logic apps by name across subscriptions with Azure Resource Graph.
func (m *Manager) SearchLogicApps(
	ctx context.Context,
	nameQuery string,
	subscriptionIds []string,
) ([]LogicAppSummary, error) {
	if strings.TrimSpace(nameQuery) == "" {
		return nil, &InvalidParameterError{Parameter: "query", Reason: "must not be empty"}
	}

	resources, err := m.azure.SearchLogicApps(ctx, nameQuery, subscriptionIds)
	if err != nil {
		return nil, err
	}

	apps := make([]LogicAppSummary, 0, len(resources))
	for _, resource := range resources {
		sku := StandardBackend
		if strings.EqualFold(resource.Type, "Microsoft.Logic/workflows") {
			sku = ConsumptionBackend
		}

		apps = append(apps, LogicAppSummary{
			Id:             resource.Id,
			Name:           resource.Name,
			ResourceGroup:  resource.ResourceGroup,
			SubscriptionId: resource.SubscriptionId,
			Location:       resource.Location,
			Sku:            sku,
		})
	}

	m.remember(apps)
	sortApps(apps)

	return apps, nil
}

func (m *Manager) remember(apps []LogicAppSummary) {
	for _, app := range apps {
		if app.SubscriptionId == "" || app.ResourceGroup == "" {
			continue
		}

		m.resolver.Remember(AppRef{
			SubscriptionId: app.SubscriptionId,
			ResourceGroup:  app.ResourceGroup,
			Name:           app.Name,
		}, app.Sku)
	}

	log.Printf("primed backend cache with %d logic apps", len(apps))
}

func sortApps(apps []LogicAppSummary) {
	slices.SortFunc(apps, func(a, b LogicAppSummary) int {
		if byName := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); byName != 0 {
			return byName
		}

		return strings.Compare(strings.ToLower(a.ResourceGroup), strings.ToLower(b.ResourceGroup))
	})
}
