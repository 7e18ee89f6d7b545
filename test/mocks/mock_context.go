// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package mocks

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/azure/logicapps-mcp/test/mocks/mockhttp"
)

type MockContext struct {
	Context                        *context.Context
	HttpClient                     *mockhttp.MockHttpClient
	Credentials                    *MockCredentials
	SubscriptionCredentialProvider *MockSubscriptionCredentialProvider
	ArmClientOptions               *arm.ClientOptions
	CoreClientOptions              *azcore.ClientOptions
}

func NewMockContext(ctx context.Context) *MockContext {
	httpClient := mockhttp.NewMockHttpUtil()
	credentials := &MockCredentials{}

	coreClientOptions := &azcore.ClientOptions{
		Cloud:     cloud.AzurePublic,
		Transport: httpClient,
		// Failures are asserted directly instead of being retried with backoff.
		Retry: policy.RetryOptions{MaxRetries: -1},
	}
	armClientOptions := &arm.ClientOptions{ClientOptions: *coreClientOptions}

	return &MockContext{
		Context:                        &ctx,
		HttpClient:                     httpClient,
		Credentials:                    credentials,
		SubscriptionCredentialProvider: &MockSubscriptionCredentialProvider{Credential: credentials},
		ArmClientOptions:               armClientOptions,
		CoreClientOptions:              coreClientOptions,
	}
}
