// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logicapps

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/azure/logicapps-mcp/pkg/azapi"
	"golang.org/x/sync/errgroup"
)

// AccessFetcher fetches the pieces of a StandardAccess.
type AccessFetcher interface {
	GetSite(ctx context.Context, subscriptionId string, resourceGroup string, name string) (*azapi.Site, error)
	GetHostMasterKey(ctx context.Context, subscriptionId string, resourceGroup string, name string) (string, error)
}

// StandardAccessProvider resolves and caches the hostname and admin key of Standard apps.
type StandardAccessProvider struct {
	cache   *ResourceCache
	fetcher AccessFetcher
}

func NewStandardAccessProvider(cache *ResourceCache, fetcher AccessFetcher) *StandardAccessProvider {
	return &StandardAccessProvider{
		cache:   cache,
		fetcher: fetcher,
	}
}

// GetStandardAccess returns the runtime hostname and admin key of a Standard app. On a cache miss the site and the
// host keys are fetched concurrently; nothing is cached unless both succeed.
func (p *StandardAccessProvider) GetStandardAccess(ctx context.Context, ref AppRef) (StandardAccess, error) {
	if access, has := p.cache.GetStandardAccess(ref); has {
		return access, nil
	}

	var hostname, adminKey string

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		site, err := p.fetcher.GetSite(groupCtx, ref.SubscriptionId, ref.ResourceGroup, ref.Name)
		if err != nil {
			return err
		}

		if site.DefaultHostName == "" {
			return fmt.Errorf("logic app '%s' has no default host name", ref.Name)
		}

		hostname = site.DefaultHostName
		return nil
	})
	group.Go(func() error {
		key, err := p.fetcher.GetHostMasterKey(groupCtx, ref.SubscriptionId, ref.ResourceGroup, ref.Name)
		if err != nil {
			return err
		}

		if key == "" {
			return errors.New("host keys response did not include a master key")
		}

		adminKey = key
		return nil
	})

	if err := group.Wait(); err != nil {
		return StandardAccess{}, fmt.Errorf("resolving runtime access for logic app '%s': %w", ref.Name, err)
	}

	access := StandardAccess{Hostname: hostname, AdminKey: adminKey}
	p.cache.SetStandardAccess(ref, access)
	log.Printf("cached runtime access for logic app '%s' (%s)", ref, hostname)

	return access, nil
}

// Invalidate drops the cached access of one app, forcing the next call to fetch a fresh key.
func (p *StandardAccessProvider) Invalidate(ref AppRef) {
	p.cache.DeleteStandardAccess(ref)
}
