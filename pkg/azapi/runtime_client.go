// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azapi

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
)

const (
	// StandardRuntimeApiVersion is the api-version of the Standard workflow management API.
	StandardRuntimeApiVersion = "2020-05-01-preview"

	runtimeManagementRoot = "/runtime/webhooks/workflow/api/management"
	vfsRoot               = "/admin/vfs/site/wwwroot"
	functionsKeyHeader    = "x-functions-key"
)

// RuntimeClient calls the workflow management API and the VFS admin API hosted by a Standard logic app. Requests are
// signed with the site's host key instead of an ARM token.
type RuntimeClient struct {
	pipeline runtime.Pipeline
}

// NewRuntimeClient builds the data plane pipeline from clientOptions, see azsdk.ClientOptionsBuilder.
func NewRuntimeClient(clientOptions *azcore.ClientOptions) *RuntimeClient {
	if clientOptions == nil {
		clientOptions = &azcore.ClientOptions{}
	}

	pipeline := runtime.NewPipeline(pipelineModuleName, pipelineModuleVersion, runtime.PipelineOptions{}, clientOptions)

	return &RuntimeClient{pipeline: pipeline}
}

// Request issues a call against the site's host. path is rooted at the host, see ManagementPath and VfsPath.
func (c *RuntimeClient) Request(
	ctx context.Context,
	hostname string,
	hostKey string,
	path string,
	options *RequestOptions,
) ([]byte, error) {
	options = withHostKey(options, hostKey)

	endpoint, err := buildUrl(hostUrl(hostname), path, options)
	if err != nil {
		return nil, err
	}

	return send(ctx, c.pipeline, endpoint, options)
}

// ListAll reads every page of a management API collection.
func (c *RuntimeClient) ListAll(
	ctx context.Context,
	hostname string,
	hostKey string,
	path string,
	options *RequestOptions,
) ([]json.RawMessage, error) {
	options = withHostKey(options, hostKey)

	endpoint, err := buildUrl(hostUrl(hostname), path, options)
	if err != nil {
		return nil, err
	}

	return listAll(ctx, c.pipeline, endpoint, options)
}

// ManagementPath joins escaped segments under the workflow management API root, e.g.
// ManagementPath("workflows", "orders", "runs") is /runtime/webhooks/workflow/api/management/workflows/orders/runs.
func ManagementPath(segments ...string) string {
	return runtimeManagementRoot + joinSegments(segments)
}

// VfsPath joins escaped segments under the site's wwwroot in the VFS admin API.
func VfsPath(segments ...string) string {
	return vfsRoot + joinSegments(segments)
}

func joinSegments(segments []string) string {
	var builder strings.Builder
	for _, segment := range segments {
		builder.WriteString("/")
		builder.WriteString(url.PathEscape(segment))
	}

	return builder.String()
}

func hostUrl(hostname string) string {
	hostname = strings.TrimSuffix(hostname, "/")
	if strings.HasPrefix(hostname, "https://") || strings.HasPrefix(hostname, "http://") {
		return hostname
	}

	return "https://" + hostname
}

func withHostKey(options *RequestOptions, hostKey string) *RequestOptions {
	copied := RequestOptions{}
	if options != nil {
		copied = *options
	}

	headers := make(map[string]string, len(copied.Headers)+1)
	for key, value := range copied.Headers {
		headers[key] = value
	}
	headers[functionsKeyHeader] = hostKey
	copied.Headers = headers

	return &copied
}
