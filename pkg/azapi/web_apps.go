// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azapi

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/azure/logicapps-mcp/pkg/convert"
)

// Site is the subset of an App Service site needed to reach a Standard logic app.
type Site struct {
	Id              string            `json:"id"`
	Name            string            `json:"name"`
	ResourceGroup   string            `json:"resourceGroup"`
	Location        string            `json:"location"`
	Kind            string            `json:"kind"`
	State           string            `json:"state,omitempty"`
	DefaultHostName string            `json:"defaultHostName,omitempty"`
	Tags            map[string]string `json:"tags,omitempty"`
}

// FlowState values accepted by the Workflows.<name>.FlowState app setting.
const (
	FlowStateEnabled  = "Enabled"
	FlowStateDisabled = "Disabled"
)

// GetSite returns the App Service site with the given name.
func (cli *AzureClient) GetSite(
	ctx context.Context,
	subscriptionId string,
	resourceGroup string,
	siteName string,
) (*Site, error) {
	client, err := cli.createWebAppsClient(ctx, subscriptionId)
	if err != nil {
		return nil, err
	}

	response, err := client.Get(ctx, resourceGroup, siteName, nil)
	if err != nil {
		return nil, fmt.Errorf("failed retrieving site properties: %w", err)
	}

	return toSite(&response.Site), nil
}

// GetHostMasterKey lists the host keys of a site and returns its master key.
func (cli *AzureClient) GetHostMasterKey(
	ctx context.Context,
	subscriptionId string,
	resourceGroup string,
	siteName string,
) (string, error) {
	client, err := cli.createWebAppsClient(ctx, subscriptionId)
	if err != nil {
		return "", err
	}

	response, err := client.ListHostKeys(ctx, resourceGroup, siteName, nil)
	if err != nil {
		return "", fmt.Errorf("failed listing host keys: %w", err)
	}

	if response.MasterKey == nil || *response.MasterKey == "" {
		return "", fmt.Errorf("site '%s' did not return a master key", siteName)
	}

	return *response.MasterKey, nil
}

// ListSites lists the App Service sites of a resource group, or of the whole subscription when resourceGroup is
// empty.
func (cli *AzureClient) ListSites(
	ctx context.Context,
	subscriptionId string,
	resourceGroup string,
) ([]*Site, error) {
	client, err := cli.createWebAppsClient(ctx, subscriptionId)
	if err != nil {
		return nil, err
	}

	sites := []*Site{}
	if resourceGroup != "" {
		pager := client.NewListByResourceGroupPager(resourceGroup, nil)
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("listing sites: %w", err)
			}

			for _, site := range page.Value {
				sites = append(sites, toSite(site))
			}
		}

		return sites, nil
	}

	pager := client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing sites: %w", err)
		}

		for _, site := range page.Value {
			sites = append(sites, toSite(site))
		}
	}

	return sites, nil
}

// GetAppSettings returns the application settings of a site.
func (cli *AzureClient) GetAppSettings(
	ctx context.Context,
	subscriptionId string,
	resourceGroup string,
	siteName string,
) (map[string]string, error) {
	client, err := cli.createWebAppsClient(ctx, subscriptionId)
	if err != nil {
		return nil, err
	}

	response, err := client.ListApplicationSettings(ctx, resourceGroup, siteName, nil)
	if err != nil {
		return nil, fmt.Errorf("failed listing application settings: %w", err)
	}

	return convert.ToStringMap(response.Properties), nil
}

// SetWorkflowFlowState writes the Workflows.<workflow>.FlowState app setting of a Standard logic app. Updates to
// one site are serialized, since the settings API replaces the whole dictionary.
func (cli *AzureClient) SetWorkflowFlowState(
	ctx context.Context,
	subscriptionId string,
	resourceGroup string,
	siteName string,
	workflowName string,
	state string,
) error {
	unlock := cli.siteLocks.Lock(strings.ToLower(strings.Join([]string{subscriptionId, resourceGroup, siteName}, "/")))
	defer unlock()

	client, err := cli.createWebAppsClient(ctx, subscriptionId)
	if err != nil {
		return err
	}

	current, err := client.ListApplicationSettings(ctx, resourceGroup, siteName, nil)
	if err != nil {
		return fmt.Errorf("failed listing application settings: %w", err)
	}

	properties := current.Properties
	if properties == nil {
		properties = map[string]*string{}
	}

	settingName := fmt.Sprintf("Workflows.%s.FlowState", workflowName)
	properties[settingName] = to.Ptr(state)

	log.Printf("setting %s=%s on site '%s'", settingName, state, siteName)

	_, err = client.UpdateApplicationSettings(
		ctx, resourceGroup, siteName, armappservice.StringDictionary{Properties: properties}, nil)
	if err != nil {
		return fmt.Errorf("failed updating application settings: %w", err)
	}

	return nil
}

func (cli *AzureClient) createWebAppsClient(
	ctx context.Context,
	subscriptionId string,
) (*armappservice.WebAppsClient, error) {
	credential, err := cli.credentialProvider.CredentialForSubscription(ctx, subscriptionId)
	if err != nil {
		return nil, err
	}

	client, err := armappservice.NewWebAppsClient(subscriptionId, credential, cli.armClientOptions)
	if err != nil {
		return nil, fmt.Errorf("creating WebApps client: %w", err)
	}

	return client, nil
}

func toSite(site *armappservice.Site) *Site {
	result := &Site{
		Id:       convert.ToValueWithDefault(site.ID, ""),
		Name:     convert.ToValueWithDefault(site.Name, ""),
		Location: convert.ToValueWithDefault(site.Location, ""),
		Kind:     convert.ToValueWithDefault(site.Kind, ""),
		Tags:     convert.ToStringMap(site.Tags),
	}

	if site.Properties != nil {
		result.State = convert.ToValueWithDefault(site.Properties.State, "")
		result.DefaultHostName = convert.ToValueWithDefault(site.Properties.DefaultHostName, "")
		result.ResourceGroup = convert.ToValueWithDefault(site.Properties.ResourceGroup, "")
	}

	if result.ResourceGroup == "" {
		result.ResourceGroup = ResourceGroupFromId(result.Id)
	}

	return result
}

// ResourceGroupFromId returns the resourceGroups segment of an ARM resource id, or "" when the id has none.
func ResourceGroupFromId(id string) string {
	segments := strings.Split(strings.Trim(id, "/"), "/")
	for i := 0; i+1 < len(segments); i++ {
		if strings.EqualFold(segments[i], "resourceGroups") {
			return segments[i+1]
		}
	}

	return ""
}
