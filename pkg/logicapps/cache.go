// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logicapps

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultCacheTTL is the TTL applied to cache entries unless changed with SetTTL.
const DefaultCacheTTL = 300 * time.Second

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// expiringMap is a map of values that are treated as absent once their expiry has passed.
// Expired entries are not removed on read; they are overwritten by the next set or removed by a clear.
type expiringMap[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
}

func newExpiringMap[T any]() *expiringMap[T] {
	return &expiringMap[T]{
		entries: map[string]entry[T]{},
	}
}

func (m *expiringMap[T]) get(key string, now time.Time) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, has := m.entries[key]
	if !has || !now.Before(e.expiresAt) {
		var zero T
		return zero, false
	}

	return e.value, true
}

func (m *expiringMap[T]) set(key string, value T, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry[T]{value: value, expiresAt: expiresAt}
}

func (m *expiringMap[T]) delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
}

func (m *expiringMap[T]) deletePrefix(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
			removed++
		}
	}

	return removed
}

func (m *expiringMap[T]) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = map[string]entry[T]{}
}

// ResourceCache holds facts learned about logic apps: their backend kind and the credentials used to reach
// Standard runtime APIs. Keys are case-insensitive. A ResourceCache is safe for concurrent use.
type ResourceCache struct {
	clock clock.Clock

	ttlMu sync.RWMutex
	ttl   time.Duration

	backends *expiringMap[BackendKind]
	access   *expiringMap[StandardAccess]
}

// NewResourceCache creates an empty cache. A nil clock uses the wall clock; a non-positive ttl uses DefaultCacheTTL.
func NewResourceCache(clk clock.Clock, ttl time.Duration) *ResourceCache {
	if clk == nil {
		clk = clock.New()
	}

	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &ResourceCache{
		clock:    clk,
		ttl:      ttl,
		backends: newExpiringMap[BackendKind](),
		access:   newExpiringMap[StandardAccess](),
	}
}

// TTL returns the TTL applied to subsequent writes.
func (c *ResourceCache) TTL() time.Duration {
	c.ttlMu.RLock()
	defer c.ttlMu.RUnlock()

	return c.ttl
}

// SetTTL changes the TTL applied to subsequent writes. Entries already stored keep their expiry. A non-positive ttl
// restores DefaultCacheTTL.
func (c *ResourceCache) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	c.ttlMu.Lock()
	defer c.ttlMu.Unlock()

	c.ttl = ttl
}

func (c *ResourceCache) expiry() time.Time {
	return c.clock.Now().Add(c.TTL())
}

// GetBackendKind returns the cached backend kind for the app, if present and not expired.
func (c *ResourceCache) GetBackendKind(ref AppRef) (BackendKind, bool) {
	return c.backends.get(ref.CacheKey(), c.clock.Now())
}

// SetBackendKind caches the backend kind for the app.
func (c *ResourceCache) SetBackendKind(ref AppRef, kind BackendKind) {
	c.backends.set(ref.CacheKey(), kind, c.expiry())
}

// GetStandardAccess returns the cached runtime access for the app, if present and not expired.
func (c *ResourceCache) GetStandardAccess(ref AppRef) (StandardAccess, bool) {
	return c.access.get(ref.CacheKey(), c.clock.Now())
}

// SetStandardAccess caches the runtime access for the app.
func (c *ResourceCache) SetStandardAccess(ref AppRef, access StandardAccess) {
	c.access.set(ref.CacheKey(), access, c.expiry())
}

// DeleteStandardAccess drops the cached runtime access for one app.
func (c *ResourceCache) DeleteStandardAccess(ref AppRef) {
	c.access.delete(ref.CacheKey())
}

// Clear removes cached entries of both kinds.
//
// With no subscription everything is removed. With a subscription only, every resource group and app under it is
// removed; adding a resource group narrows that to the apps in the group, and adding an app name narrows it to one
// app. An app name given without a resource group is ignored.
func (c *ResourceCache) Clear(subscriptionId string, resourceGroup string, appName string) {
	switch {
	case subscriptionId == "":
		c.backends.reset()
		c.access.reset()
		log.Printf("cleared logic app cache")
	case resourceGroup == "":
		c.clearPrefix(cacheKey(subscriptionId) + "/")
	case appName == "":
		c.clearPrefix(cacheKey(subscriptionId, resourceGroup) + "/")
	default:
		key := cacheKey(subscriptionId, resourceGroup, appName)
		c.backends.delete(key)
		c.access.delete(key)
		log.Printf("cleared logic app cache entry '%s'", key)
	}
}

func (c *ResourceCache) clearPrefix(prefix string) {
	removed := c.backends.deletePrefix(prefix) + c.access.deletePrefix(prefix)
	log.Printf("cleared %d logic app cache entries under '%s'", removed, prefix)
}
