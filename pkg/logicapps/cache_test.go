// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logicapps

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

func TestResourceCacheBackendKind(t *testing.T) {
	clk := clock.NewMock()
	cache := NewResourceCache(clk, time.Minute)

	cache.SetBackendKind(AppRef{SubscriptionId: "SUB", ResourceGroup: "RG-Orders", Name: "LA-Orders"}, StandardBackend)

	kind, has := cache.GetBackendKind(AppRef{SubscriptionId: "sub", ResourceGroup: "rg-orders", Name: "la-orders"})
	require.True(t, has)
	require.Equal(t, StandardBackend, kind)

	clk.Add(time.Minute - time.Second)
	_, has = cache.GetBackendKind(AppRef{SubscriptionId: "sub", ResourceGroup: "rg-orders", Name: "la-orders"})
	require.True(t, has)

	clk.Add(time.Second)
	_, has = cache.GetBackendKind(AppRef{SubscriptionId: "sub", ResourceGroup: "rg-orders", Name: "la-orders"})
	require.False(t, has)
}

func TestResourceCacheStandardAccess(t *testing.T) {
	cache := NewResourceCache(clock.NewMock(), time.Minute)
	ref := AppRef{SubscriptionId: "sub", ResourceGroup: "rg", Name: "la-std"}

	_, has := cache.GetStandardAccess(ref)
	require.False(t, has)

	cache.SetStandardAccess(ref, StandardAccess{Hostname: "la-std.azurewebsites.net", AdminKey: "key"})
	access, has := cache.GetStandardAccess(ref)
	require.True(t, has)
	require.Equal(t, "key", access.AdminKey)

	cache.DeleteStandardAccess(ref)
	_, has = cache.GetStandardAccess(ref)
	require.False(t, has)
}

func TestResourceCacheDefaults(t *testing.T) {
	cache := NewResourceCache(nil, 0)
	require.Equal(t, DefaultCacheTTL, cache.TTL())
}

func TestResourceCacheSetTTL(t *testing.T) {
	clk := clock.NewMock()
	cache := NewResourceCache(clk, 10*time.Minute)

	before := AppRef{SubscriptionId: "sub", ResourceGroup: "rg", Name: "before"}
	cache.SetBackendKind(before, ConsumptionBackend)

	cache.SetTTL(time.Minute)
	require.Equal(t, time.Minute, cache.TTL())

	after := AppRef{SubscriptionId: "sub", ResourceGroup: "rg", Name: "after"}
	cache.SetBackendKind(after, ConsumptionBackend)

	clk.Add(2 * time.Minute)

	_, has := cache.GetBackendKind(before)
	require.True(t, has, "entries written before SetTTL keep their expiry")

	_, has = cache.GetBackendKind(after)
	require.False(t, has)
}

func TestResourceCacheSetNonPositiveTTL(t *testing.T) {
	clk := clock.NewMock()
	cache := NewResourceCache(clk, time.Minute)

	for _, ttl := range []time.Duration{0, -time.Second} {
		cache.SetTTL(ttl)
		require.Equal(t, DefaultCacheTTL, cache.TTL())
	}

	ref := AppRef{SubscriptionId: "sub", ResourceGroup: "rg", Name: "la"}
	cache.SetBackendKind(ref, StandardBackend)
	clk.Add(time.Minute)

	kind, has := cache.GetBackendKind(ref)
	require.True(t, has)
	require.Equal(t, StandardBackend, kind)
}

func TestResourceCacheClear(t *testing.T) {
	apps := []AppRef{
		{SubscriptionId: "sub-a", ResourceGroup: "rg-1", Name: "app-1"},
		{SubscriptionId: "sub-a", ResourceGroup: "rg-1", Name: "app-2"},
		{SubscriptionId: "sub-a", ResourceGroup: "rg-10", Name: "app-3"},
		{SubscriptionId: "sub-b", ResourceGroup: "rg-1", Name: "app-1"},
	}

	seed := func() *ResourceCache {
		cache := NewResourceCache(clock.NewMock(), time.Minute)
		for _, app := range apps {
			cache.SetBackendKind(app, StandardBackend)
			cache.SetStandardAccess(app, StandardAccess{Hostname: app.Name, AdminKey: "key"})
		}

		return cache
	}

	remaining := func(cache *ResourceCache) []string {
		names := []string{}
		for _, app := range apps {
			_, hasKind := cache.GetBackendKind(app)
			_, hasAccess := cache.GetStandardAccess(app)
			require.Equal(t, hasKind, hasAccess)
			if hasKind {
				names = append(names, app.String())
			}
		}

		return names
	}

	tests := []struct {
		name          string
		subscription  string
		resourceGroup string
		appName       string
		expected      []string
	}{
		{
			name:     "Everything",
			expected: []string{},
		},
		{
			name:         "Subscription",
			subscription: "SUB-A",
			expected:     []string{"sub-b/rg-1/app-1"},
		},
		{
			name:          "ResourceGroup",
			subscription:  "sub-a",
			resourceGroup: "RG-1",
			expected:      []string{"sub-a/rg-10/app-3", "sub-b/rg-1/app-1"},
		},
		{
			name:          "App",
			subscription:  "sub-a",
			resourceGroup: "rg-1",
			appName:       "APP-1",
			expected:      []string{"sub-a/rg-1/app-2", "sub-a/rg-10/app-3", "sub-b/rg-1/app-1"},
		},
		{
			name:         "AppWithoutResourceGroup",
			subscription: "sub-a",
			appName:      "app-1",
			expected:     []string{"sub-b/rg-1/app-1"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cache := seed()
			cache.Clear(test.subscription, test.resourceGroup, test.appName)
			require.Equal(t, test.expected, remaining(cache))
		})
	}
}
