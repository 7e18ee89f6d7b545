// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	armruntime "github.com/Azure/azure-sdk-for-go/sdk/azcore/arm/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/tidwall/gjson"
)

const (
	pipelineModuleName    = "logicapps-mcp"
	pipelineModuleVersion = "1.0.0"
)

// RequestOptions customizes a call made with AzureClient.Request.
type RequestOptions struct {
	// HTTP method, GET when empty.
	Method string
	// The api-version query parameter. Required by ARM.
	ApiVersion string
	// Additional query parameters.
	Query url.Values
	// Additional request headers.
	Headers map[string]string
	// Body is marshalled as JSON when set.
	Body any
	// MaxItems stops ListAll once this many items were collected. Zero means no limit.
	MaxItems int
}

type armPipeline struct {
	pipeline runtime.Pipeline
}

// Request issues an authenticated call against an ARM path such as
// /subscriptions/{id}/resourceGroups/{rg}/providers/Microsoft.Logic/workflows/{name} and returns the raw JSON body.
// Non-success responses are returned as *azcore.ResponseError.
func (cli *AzureClient) Request(ctx context.Context, path string, options *RequestOptions) ([]byte, error) {
	if options == nil {
		options = &RequestOptions{}
	}

	endpoint, err := buildUrl(cli.armEndpointURL, path, options)
	if err != nil {
		return nil, err
	}

	pipeline, err := cli.armPipeline(ctx, subscriptionFromPath(path))
	if err != nil {
		return nil, err
	}

	return send(ctx, pipeline, endpoint, options)
}

// ListAll issues a GET against a collection path and follows nextLink until all pages (or MaxItems items) are read.
func (cli *AzureClient) ListAll(ctx context.Context, path string, options *RequestOptions) ([]json.RawMessage, error) {
	if options == nil {
		options = &RequestOptions{}
	}

	endpoint, err := buildUrl(cli.armEndpointURL, path, options)
	if err != nil {
		return nil, err
	}

	pipeline, err := cli.armPipeline(ctx, subscriptionFromPath(path))
	if err != nil {
		return nil, err
	}

	return listAll(ctx, pipeline, endpoint, options)
}

func listAll(
	ctx context.Context,
	pipeline runtime.Pipeline,
	endpoint string,
	options *RequestOptions,
) ([]json.RawMessage, error) {
	items := []json.RawMessage{}

	for endpoint != "" {
		body, err := send(ctx, pipeline, endpoint, &RequestOptions{Headers: options.Headers})
		if err != nil {
			return nil, err
		}

		page := gjson.ParseBytes(body)
		for _, value := range page.Get("value").Array() {
			items = append(items, json.RawMessage(value.Raw))
			if options.MaxItems > 0 && len(items) >= options.MaxItems {
				return items, nil
			}
		}

		endpoint = page.Get("nextLink").String()
	}

	return items, nil
}

func send(
	ctx context.Context,
	pipeline runtime.Pipeline,
	endpoint string,
	options *RequestOptions,
) ([]byte, error) {
	method := options.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := runtime.NewRequest(ctx, method, endpoint)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Raw().Header.Set("Accept", "application/json")
	for key, value := range options.Headers {
		req.Raw().Header.Set(key, value)
	}

	if options.Body != nil {
		if err := runtime.MarshalAsJSON(req, options.Body); err != nil {
			return nil, fmt.Errorf("marshalling request body: %w", err)
		}
	}

	response, err := pipeline.Do(req)
	if err != nil {
		return nil, err
	}

	if !runtime.HasStatusCode(response, http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent) {
		return nil, runtime.NewResponseError(response)
	}

	body, err := runtime.Payload(response)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return body, nil
}

func (cli *AzureClient) armPipeline(ctx context.Context, subscriptionId string) (runtime.Pipeline, error) {
	cached, err := cli.pipelines.GetOrCreate(subscriptionId, func() (*armPipeline, error) {
		credential, err := cli.credentialProvider.CredentialForSubscription(ctx, subscriptionId)
		if err != nil {
			return nil, err
		}

		options := *cli.armClientOptions
		// Requests target several resource providers; none needs registering by this client.
		options.DisableRPRegistration = true

		pipeline, err := armruntime.NewPipeline(
			pipelineModuleName, pipelineModuleVersion, credential, runtime.PipelineOptions{}, &options)
		if err != nil {
			return nil, fmt.Errorf("failed creating HTTP pipeline: %w", err)
		}

		return &armPipeline{pipeline: pipeline}, nil
	})
	if err != nil {
		return runtime.Pipeline{}, err
	}

	return cached.pipeline, nil
}

func buildUrl(baseUrl string, path string, options *RequestOptions) (string, error) {
	if !strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("request path '%s' must start with '/'", path)
	}

	endpoint, err := url.Parse(baseUrl + path)
	if err != nil {
		return "", fmt.Errorf("parsing request url: %w", err)
	}

	query := endpoint.Query()
	for key, values := range options.Query {
		for _, value := range values {
			query.Add(key, value)
		}
	}

	if options.ApiVersion != "" {
		query.Set("api-version", options.ApiVersion)
	}

	endpoint.RawQuery = query.Encode()
	return endpoint.String(), nil
}

func resourceManagerEndpoint(options *arm.ClientOptions) string {
	configuration := options.Cloud
	if len(configuration.Services) == 0 {
		configuration = cloud.AzurePublic
	}

	endpoint := cloud.AzurePublic.Services[cloud.ResourceManager].Endpoint
	if service, has := configuration.Services[cloud.ResourceManager]; has && service.Endpoint != "" {
		endpoint = service.Endpoint
	}

	return strings.TrimSuffix(endpoint, "/")
}

// subscriptionFromPath extracts the subscription id from an ARM path, or returns "" for tenant level paths.
func subscriptionFromPath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) >= 2 && strings.EqualFold(segments[0], "subscriptions") {
		return segments[1]
	}

	return ""
}
