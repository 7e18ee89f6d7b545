// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azapi

import "sync"

// clientCache provides thread-safe caching of HTTP pipelines and SDK clients by a string key (typically subscription
// ID), so connections are reused across tool calls.
type clientCache[T any] struct {
	cache sync.Map
}

// GetOrCreate returns a cached value for the given key, or creates one using the factory function.
// The factory is only called on cache miss. Thread-safe via sync.Map.LoadOrStore.
func (c *clientCache[T]) GetOrCreate(key string, factory func() (T, error)) (T, error) {
	if cached, ok := c.cache.Load(key); ok {
		return cached.(T), nil
	}

	client, err := factory()
	if err != nil {
		var zero T
		return zero, err
	}

	actual, _ := c.cache.LoadOrStore(key, client)
	return actual.(T), nil
}

// keyedMutex serializes work per key, e.g. read-modify-write of one site's application settings.
type keyedMutex struct {
	locks sync.Map
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	value, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}
