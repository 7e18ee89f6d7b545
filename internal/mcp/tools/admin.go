// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package tools

import (
	"context"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/azure/logicapps-mcp/pkg/logicapps"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (t *Toolset) NewBatchEnableWorkflowsTool() server.ServerTool {
	return t.newBatchWorkflowStateTool("batch_enable_workflows", true)
}

func (t *Toolset) NewBatchDisableWorkflowsTool() server.ServerTool {
	return t.newBatchWorkflowStateTool("batch_disable_workflows", false)
}

func (t *Toolset) newBatchWorkflowStateTool(name string, enabled bool) server.ServerTool {
	description := heredoc.Doc(`
		Disables many workflows of a Standard logic app. For a Consumption logic app the logic app
		itself is disabled once, whatever names are given.
	`)
	if enabled {
		description = heredoc.Doc(`
			Enables many workflows of a Standard logic app. For a Consumption logic app the logic app
			itself is enabled once, whatever names are given.
		`)
	}

	return server.ServerTool{
		Tool: newAppTool(
			name,
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithDescription(description),
			mcp.WithArray("workflowNames",
				mcp.Description("Names of the workflows"),
				mcp.WithStringItems(),
				mcp.Required(),
			),
			concurrencyParam(),
		),
		Handler: handle(name, func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			ref, err := t.appRef(request)
			if err != nil {
				return nil, err
			}

			workflowNames, err := request.RequireStringSlice("workflowNames")
			if err != nil {
				return nil, &logicapps.InvalidParameterError{Parameter: "workflowNames", Reason: err.Error()}
			}

			concurrency := request.GetInt(argConcurrency, 0)
			if enabled {
				return t.manager.BatchEnableWorkflows(ctx, ref, workflowNames, concurrency)
			}

			return t.manager.BatchDisableWorkflows(ctx, ref, workflowNames, concurrency)
		}),
	}
}

func (t *Toolset) NewListConnectionsTool() server.ServerTool {
	return server.ServerTool{
		Tool: mcp.NewTool(
			"list_connections",
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDescription("Lists the API connections (Microsoft.Web/connections) of a resource group."),
			subscriptionParam(),
			mcp.WithString(argResourceGroup,
				mcp.Description("Resource group containing the connections"),
				mcp.Required(),
			),
		),
		Handler: handle("list_connections", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			subscriptionId, err := t.subscriptionId(request)
			if err != nil {
				return nil, err
			}

			resourceGroup, err := requireString(request, argResourceGroup)
			if err != nil {
				return nil, err
			}

			return t.manager.ListConnections(ctx, subscriptionId, resourceGroup)
		}),
	}
}

func (t *Toolset) NewGetConnectionDetailsTool() server.ServerTool {
	return server.ServerTool{
		Tool: mcp.NewTool(
			"get_connection_details",
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDescription(heredoc.Doc(`
				Returns the status of an API connection and the names of its parameters.
				Parameter values are never returned.
			`)),
			subscriptionParam(),
			mcp.WithString(argResourceGroup,
				mcp.Description("Resource group containing the connection"),
				mcp.Required(),
			),
			mcp.WithString(argConnectionName,
				mcp.Description("Name of the API connection"),
				mcp.Required(),
			),
		),
		Handler: handle("get_connection_details", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			subscriptionId, err := t.subscriptionId(request)
			if err != nil {
				return nil, err
			}

			resourceGroup, err := requireString(request, argResourceGroup)
			if err != nil {
				return nil, err
			}

			connectionName, err := requireString(request, argConnectionName)
			if err != nil {
				return nil, err
			}

			return t.manager.GetConnectionDetails(ctx, subscriptionId, resourceGroup, connectionName)
		}),
	}
}

type clearCacheResult struct {
	Success bool   `json:"success"`
	Scope   string `json:"scope"`
}

func (t *Toolset) NewClearCacheTool() server.ServerTool {
	return server.ServerTool{
		Tool: mcp.NewTool(
			"clear_cache",
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithDescription(heredoc.Doc(`
				Forgets cached logic app skus and Standard runtime keys. Without arguments the whole cache
				is cleared; a subscription, resource group and logic app name narrow the scope step by step.
				Use this after a logic app was recreated or its keys were rotated.
			`)),
			mcp.WithString(argSubscriptionId, mcp.Description("Only clear entries of this subscription")),
			mcp.WithString(argResourceGroup, mcp.Description("Only clear entries of this resource group")),
			mcp.WithString(argLogicApp, mcp.Description("Only clear the entry of this logic app")),
		),
		Handler: handle("clear_cache", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			subscriptionId := strings.TrimSpace(request.GetString(argSubscriptionId, ""))
			resourceGroup := strings.TrimSpace(request.GetString(argResourceGroup, ""))
			appName := strings.TrimSpace(request.GetString(argLogicApp, ""))

			t.manager.ClearCache(subscriptionId, resourceGroup, appName)

			scope := "all"
			switch {
			case subscriptionId == "":
			case resourceGroup == "":
				scope = subscriptionId
			case appName == "":
				scope = subscriptionId + "/" + resourceGroup
			default:
				scope = subscriptionId + "/" + resourceGroup + "/" + appName
			}

			return clearCacheResult{Success: true, Scope: scope}, nil
		}),
	}
}
