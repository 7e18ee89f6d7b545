// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azapi

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/azure/logicapps-mcp/pkg/account"
)

// AzureClient reaches Azure Resource Manager on behalf of the logic app tools. Consumption workflows, API
// connections and ARM actions are reached through the generic Request path; App Service sites use the
// armappservice SDK.
type AzureClient struct {
	credentialProvider account.SubscriptionCredentialProvider
	armClientOptions   *arm.ClientOptions

	pipelines      clientCache[*armPipeline]
	siteLocks      keyedMutex
	armEndpointURL string
}

func NewAzureClient(
	credentialProvider account.SubscriptionCredentialProvider,
	armClientOptions *arm.ClientOptions,
) *AzureClient {
	if armClientOptions == nil {
		armClientOptions = &arm.ClientOptions{}
	}

	return &AzureClient{
		credentialProvider: credentialProvider,
		armClientOptions:   armClientOptions,
		armEndpointURL:     resourceManagerEndpoint(armClientOptions),
	}
}
