// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package account

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/azure/logicapps-mcp/internal"
	"github.com/azure/logicapps-mcp/pkg/azsdk"
)

// ErrNoCurrentUser indicates that no Azure identity is signed in.
var ErrNoCurrentUser = errors.New("not logged in to Azure")

// SubscriptionCredentialProvider provides an [azcore.TokenCredential] able to call Azure on behalf of the given
// subscription. An empty subscription id asks for a tenant level credential, e.g. to list subscriptions.
type SubscriptionCredentialProvider interface {
	CredentialForSubscription(ctx context.Context, subscriptionId string) (azcore.TokenCredential, error)
}

// CredentialFactory creates the credential used for a tenant ("" for the default tenant).
type CredentialFactory func(tenantId string) (azcore.TokenCredential, error)

// CredentialProvider signs in with the Azure CLI login, falling back to DefaultAzureCredential (environment,
// workload identity, managed identity). Credentials are verified once by requesting a resource manager token.
type CredentialProvider struct {
	cloud   cloud.Configuration
	factory CredentialFactory

	mu         sync.Mutex
	credential azcore.TokenCredential
}

func NewCredentialProvider(cloud cloud.Configuration, factory CredentialFactory) *CredentialProvider {
	if factory == nil {
		factory = DefaultCredentialFactory(cloud)
	}

	return &CredentialProvider{
		cloud:   cloud,
		factory: factory,
	}
}

// DefaultCredentialFactory chains AzureCLICredential with DefaultAzureCredential.
func DefaultCredentialFactory(configuration cloud.Configuration) CredentialFactory {
	return func(tenantId string) (azcore.TokenCredential, error) {
		cliCredential, err := azidentity.NewAzureCLICredential(&azidentity.AzureCLICredentialOptions{
			TenantID: tenantId,
		})
		if err != nil {
			return nil, fmt.Errorf("creating azure cli credential: %w", err)
		}

		defaultCredential, err := azidentity.NewDefaultAzureCredential(&azidentity.DefaultAzureCredentialOptions{
			ClientOptions: policy.ClientOptions{Cloud: configuration},
			TenantID:      tenantId,
		})
		if err != nil {
			return nil, fmt.Errorf("creating default azure credential: %w", err)
		}

		return azidentity.NewChainedTokenCredential(
			[]azcore.TokenCredential{cliCredential, defaultCredential}, nil)
	}
}

func (p *CredentialProvider) CredentialForSubscription(
	ctx context.Context,
	subscriptionId string,
) (azcore.TokenCredential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.credential != nil {
		return p.credential, nil
	}

	log.Printf("creating azure credential")

	credential, err := p.factory("")
	if err != nil {
		return nil, err
	}

	if err := p.ensureLoggedIn(ctx, credential); err != nil {
		return nil, err
	}

	p.credential = credential
	return credential, nil
}

func (p *CredentialProvider) ensureLoggedIn(ctx context.Context, credential azcore.TokenCredential) error {
	_, err := credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{azsdk.ResourceManagerScope(p.cloud)},
	})
	if err != nil {
		return &internal.ErrorWithSuggestion{
			Err: fmt.Errorf("failed to get token: %v: %w", err, ErrNoCurrentUser),
			Suggestion: "Run `az login` to sign in to Azure, or set AZURE_CLIENT_ID, AZURE_TENANT_ID and " +
				"AZURE_CLIENT_SECRET for a service principal.",
		}
	}

	return nil
}
