// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azsdk

import (
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
)

const (
	AzurePublicName       = "AzurePublic"
	AzureChinaCloudName   = "AzureChinaCloud"
	AzureUSGovernmentName = "AzureUSGovernment"
)

// ParseCloud returns the configuration of a named Azure cloud. An empty name is the public cloud.
func ParseCloud(name string) (cloud.Configuration, error) {
	switch strings.ToLower(name) {
	case "", strings.ToLower(AzurePublicName), "azurecloud":
		return cloud.AzurePublic, nil
	case strings.ToLower(AzureChinaCloudName):
		return cloud.AzureChina, nil
	case strings.ToLower(AzureUSGovernmentName):
		return cloud.AzureGovernment, nil
	default:
		return cloud.Configuration{}, fmt.Errorf(
			"unknown cloud '%s', expected one of %s, %s or %s",
			name, AzurePublicName, AzureChinaCloudName, AzureUSGovernmentName)
	}
}

// ResourceManagerScope returns the token scope for the cloud's resource manager.
func ResourceManagerScope(configuration cloud.Configuration) string {
	endpoint := cloud.AzurePublic.Services[cloud.ResourceManager].Endpoint
	if service, has := configuration.Services[cloud.ResourceManager]; has && service.Endpoint != "" {
		endpoint = service.Endpoint
	}

	return strings.TrimSuffix(endpoint, "/") + "/.default"
}
