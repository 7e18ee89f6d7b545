// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resourcegraph/armresourcegraph"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"github.com/azure/logicapps-mcp/pkg/convert"
)

type Subscription struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	State    string `json:"state"`
	TenantId string `json:"tenantId"`
}

type Resource struct {
	Id             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	Kind           string `json:"kind,omitempty"`
	Location       string `json:"location"`
	ResourceGroup  string `json:"resourceGroup"`
	SubscriptionId string `json:"subscriptionId,omitempty"`
}

// ListSubscriptions lists the subscriptions visible to the signed in identity.
func (cli *AzureClient) ListSubscriptions(ctx context.Context) ([]*Subscription, error) {
	credential, err := cli.credentialProvider.CredentialForSubscription(ctx, "")
	if err != nil {
		return nil, err
	}

	client, err := armsubscriptions.NewClient(credential, cli.armClientOptions)
	if err != nil {
		return nil, fmt.Errorf("creating subscriptions client: %w", err)
	}

	subscriptions := []*Subscription{}
	pager := client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed getting next page of subscriptions: %w", err)
		}

		for _, subscription := range page.SubscriptionListResult.Value {
			subscriptions = append(subscriptions, &Subscription{
				Id:       convert.ToValueWithDefault(subscription.SubscriptionID, ""),
				Name:     convert.ToValueWithDefault(subscription.DisplayName, ""),
				State:    string(convert.ToValueWithDefault(subscription.State, "")),
				TenantId: convert.ToValueWithDefault(subscription.TenantID, ""),
			})
		}
	}

	return subscriptions, nil
}

// ListResourcesOfType lists the resources of one ARM type in a resource group.
func (cli *AzureClient) ListResourcesOfType(
	ctx context.Context,
	subscriptionId string,
	resourceGroup string,
	resourceType string,
) ([]*Resource, error) {
	credential, err := cli.credentialProvider.CredentialForSubscription(ctx, subscriptionId)
	if err != nil {
		return nil, err
	}

	client, err := armresources.NewClient(subscriptionId, credential, cli.armClientOptions)
	if err != nil {
		return nil, fmt.Errorf("creating Resource client: %w", err)
	}

	filter := fmt.Sprintf("resourceType eq '%s'", resourceType)
	options := armresources.ClientListByResourceGroupOptions{Filter: &filter}

	resources := []*Resource{}
	pager := client.NewListByResourceGroupPager(resourceGroup, &options)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing resources of type '%s': %w", resourceType, err)
		}

		for _, resource := range page.ResourceListResult.Value {
			resources = append(resources, &Resource{
				Id:             convert.ToValueWithDefault(resource.ID, ""),
				Name:           convert.ToValueWithDefault(resource.Name, ""),
				Type:           convert.ToValueWithDefault(resource.Type, ""),
				Kind:           convert.ToValueWithDefault(resource.Kind, ""),
				Location:       convert.ToValueWithDefault(resource.Location, ""),
				ResourceGroup:  resourceGroup,
				SubscriptionId: subscriptionId,
			})
		}
	}

	return resources, nil
}

// SearchLogicApps finds Consumption workflows and Standard logic app sites whose name contains nameQuery across the
// given subscriptions, or all accessible subscriptions when none are given.
func (cli *AzureClient) SearchLogicApps(
	ctx context.Context,
	nameQuery string,
	subscriptionIds []string,
) ([]*Resource, error) {
	credential, err := cli.credentialProvider.CredentialForSubscription(ctx, "")
	if err != nil {
		return nil, err
	}

	client, err := armresourcegraph.NewClient(credential, cli.armClientOptions)
	if err != nil {
		return nil, fmt.Errorf("creating resource graph client: %w", err)
	}

	query := fmt.Sprintf(`
	Resources
	| where type =~ 'microsoft.logic/workflows' or (type =~ 'microsoft.web/sites' and kind contains 'workflowapp')
	| where name contains '%s'
	| project id, name, type, kind, location, resourceGroup, subscriptionId
	| order by name asc
	`, escapeKql(nameQuery))

	request := armresourcegraph.QueryRequest{
		Query: &query,
		Options: &armresourcegraph.QueryRequestOptions{
			AllowPartialScopes: to.Ptr(true),
			ResultFormat:       to.Ptr(armresourcegraph.ResultFormatObjectArray),
		},
	}
	if len(subscriptionIds) > 0 {
		request.Subscriptions = to.SliceOfPtrs(subscriptionIds...)
	}

	response, err := client.Resources(ctx, request, nil)
	if err != nil {
		return nil, fmt.Errorf("querying resource graph: %w", err)
	}

	if response.QueryResponse.Data == nil {
		return []*Resource{}, nil
	}

	rows, ok := response.QueryResponse.Data.([]any)
	if !ok {
		return nil, errors.New("error converting resource graph data to list")
	}

	raw, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshalling resource graph rows: %w", err)
	}

	resources := []*Resource{}
	if err := json.Unmarshal(raw, &resources); err != nil {
		return nil, fmt.Errorf("unmarshalling resource graph rows: %w", err)
	}

	return resources, nil
}

func escapeKql(value string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
}
