// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logicapps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/azure/logicapps-mcp/pkg/azapi"
	"github.com/sethvargo/go-retry"
)

// standardRetryDelay is the pause before re-reading a rotated host key.
var standardRetryDelay = 200 * time.Millisecond

// workflowEndpoint addresses the management API of one workflow. Consumption workflows are served by ARM and Standard
// workflows by the app's own host; both expose the same runs and triggers resources below the workflow path.
type workflowEndpoint struct {
	path       string
	apiVersion string
	do         func(ctx context.Context, path string, options *azapi.RequestOptions) ([]byte, error)
	list       func(ctx context.Context, path string, options *azapi.RequestOptions) ([]json.RawMessage, error)
}

func (e *workflowEndpoint) call(
	ctx context.Context,
	method string,
	subPath string,
	options *azapi.RequestOptions,
) ([]byte, error) {
	if options == nil {
		options = &azapi.RequestOptions{}
	}
	options.Method = method
	options.ApiVersion = e.apiVersion

	return e.do(ctx, e.path+subPath, options)
}

func (e *workflowEndpoint) listAll(
	ctx context.Context,
	subPath string,
	options *azapi.RequestOptions,
) ([]json.RawMessage, error) {
	if options == nil {
		options = &azapi.RequestOptions{}
	}
	options.ApiVersion = e.apiVersion

	return e.list(ctx, e.path+subPath, options)
}

// workflowEndpoint resolves the app and returns the endpoint of one of its workflows. workflowName is required for
// Standard apps and ignored for Consumption apps.
func (m *Manager) workflowEndpoint(ctx context.Context, ref AppRef, workflowName string) (*workflowEndpoint, error) {
	app, err := m.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	switch app := app.(type) {
	case ConsumptionApp:
		return &workflowEndpoint{
			path:       azapi.LogicWorkflowPath(ref.SubscriptionId, ref.ResourceGroup, ref.Name),
			apiVersion: azapi.LogicApiVersion,
			do:         m.azure.Request,
			list:       m.azure.ListAll,
		}, nil
	case StandardApp:
		if workflowName == "" {
			return nil, workflowNameRequired()
		}

		return &workflowEndpoint{
			path:       azapi.ManagementPath("workflows", workflowName),
			apiVersion: azapi.StandardRuntimeApiVersion,
			do: func(ctx context.Context, path string, options *azapi.RequestOptions) ([]byte, error) {
				return m.runtimeRequest(ctx, app, path, options)
			},
			list: func(ctx context.Context, path string, options *azapi.RequestOptions) ([]json.RawMessage, error) {
				var items []json.RawMessage
				err := m.withStandardAccess(ctx, app, func(ctx context.Context, access StandardAccess) error {
					var err error
					items, err = m.runtime.ListAll(ctx, access.Hostname, access.AdminKey, path, options)
					return err
				})

				return items, err
			},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported logic app backend '%s'", app.Kind())
	}
}

// runtimeRequest calls a host-rooted path of a Standard app.
func (m *Manager) runtimeRequest(
	ctx context.Context,
	app StandardApp,
	path string,
	options *azapi.RequestOptions,
) ([]byte, error) {
	var body []byte
	err := m.withStandardAccess(ctx, app, func(ctx context.Context, access StandardAccess) error {
		var err error
		body, err = m.runtime.Request(ctx, access.Hostname, access.AdminKey, path, options)
		return err
	})

	return body, err
}

// withStandardAccess runs call with the app's runtime access. A 401 means the cached host key was rotated: the entry
// is dropped and call runs once more with a freshly fetched key.
func (m *Manager) withStandardAccess(
	ctx context.Context,
	app StandardApp,
	call func(ctx context.Context, access StandardAccess) error,
) error {
	backoff := retry.WithMaxRetries(1, retry.NewConstant(standardRetryDelay))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		access, err := m.access.GetStandardAccess(ctx, app.AppRef)
		if err != nil {
			return err
		}

		err = call(ctx, access)
		if isUnauthorized(err) {
			log.Printf("runtime of logic app '%s' rejected the cached host key, refreshing", app.AppRef)
			m.access.Invalidate(app.AppRef)
			return retry.RetryableError(err)
		}

		return err
	})
}

func isUnauthorized(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusUnauthorized
}
