// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

const (
	ConnectionsApiVersion  = "2016-06-01"
	ConnectionResourceType = "Microsoft.Web/connections"
)

// ListConnections lists the API connections of a resource group.
func (cli *AzureClient) ListConnections(
	ctx context.Context,
	subscriptionId string,
	resourceGroup string,
) ([]*Resource, error) {
	return cli.ListResourcesOfType(ctx, subscriptionId, resourceGroup, ConnectionResourceType)
}

// GetConnection returns the full API connection resource, including its status and parameter values.
func (cli *AzureClient) GetConnection(
	ctx context.Context,
	subscriptionId string,
	resourceGroup string,
	connectionName string,
) (json.RawMessage, error) {
	path := fmt.Sprintf(
		"/subscriptions/%s/resourceGroups/%s/providers/Microsoft.Web/connections/%s",
		url.PathEscape(subscriptionId),
		url.PathEscape(resourceGroup),
		url.PathEscape(connectionName),
	)

	body, err := cli.Request(ctx, path, &RequestOptions{ApiVersion: ConnectionsApiVersion})
	if err != nil {
		return nil, fmt.Errorf("getting connection '%s': %w", connectionName, err)
	}

	return body, nil
}
