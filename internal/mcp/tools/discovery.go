// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package tools

import (
	"context"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/azure/logicapps-mcp/pkg/logicapps"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (t *Toolset) NewListSubscriptionsTool() server.ServerTool {
	return server.ServerTool{
		Tool: mcp.NewTool(
			"list_subscriptions",
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDescription("Lists the Azure subscriptions available to the signed in account."),
		),
		Handler: handle("list_subscriptions", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			return t.manager.ListSubscriptions(ctx)
		}),
	}
}

func (t *Toolset) NewListLogicAppsTool() server.ServerTool {
	return server.ServerTool{
		Tool: mcp.NewTool(
			"list_logic_apps",
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDescription(heredoc.Doc(`
				Lists the logic apps of a subscription or resource group. Both Consumption logic apps
				(Microsoft.Logic/workflows) and Standard logic apps (App Service sites of kind workflowapp)
				are returned, each tagged with its sku.
			`)),
			subscriptionParam(),
			mcp.WithString(argResourceGroup,
				mcp.Description("Resource group to list. Lists the whole subscription when omitted."),
			),
			mcp.WithString("sku",
				mcp.Description("Only list logic apps of this sku"),
				mcp.Enum(string(logicapps.ConsumptionBackend), string(logicapps.StandardBackend)),
			),
		),
		Handler: handle("list_logic_apps", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			subscriptionId, err := t.subscriptionId(request)
			if err != nil {
				return nil, err
			}

			return t.manager.ListLogicApps(
				ctx,
				subscriptionId,
				request.GetString(argResourceGroup, ""),
				logicapps.BackendKind(request.GetString("sku", "")),
			)
		}),
	}
}

func (t *Toolset) NewSearchLogicAppsTool() server.ServerTool {
	return server.ServerTool{
		Tool: mcp.NewTool(
			"search_logic_apps",
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDescription(heredoc.Doc(`
				Searches logic apps by name across subscriptions using Azure Resource Graph.
				Use this when the resource group of a logic app is unknown.
			`)),
			mcp.WithString("query",
				mcp.Description("Part of the logic app name, matched case-insensitively"),
				mcp.Required(),
			),
			mcp.WithArray("subscriptionIds",
				mcp.Description("Subscriptions to search. Searches every accessible subscription when omitted."),
				mcp.WithStringItems(),
			),
		),
		Handler: handle("search_logic_apps", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			return t.manager.SearchLogicApps(
				ctx,
				request.GetString("query", ""),
				request.GetStringSlice("subscriptionIds", nil),
			)
		}),
	}
}

func (t *Toolset) NewListWorkflowsTool() server.ServerTool {
	return server.ServerTool{
		Tool: newAppTool(
			"list_workflows",
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDescription(heredoc.Doc(`
				Lists the workflows of a logic app. A Consumption logic app is a single workflow;
				a Standard logic app hosts any number of workflows.
			`)),
		),
		Handler: handle("list_workflows", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			ref, err := t.appRef(request)
			if err != nil {
				return nil, err
			}

			return t.manager.ListWorkflows(ctx, ref)
		}),
	}
}

type skuResult struct {
	LogicAppName string                `json:"logicAppName"`
	Sku          logicapps.BackendKind `json:"sku"`
}

func (t *Toolset) NewDetectLogicAppSkuTool() server.ServerTool {
	return server.ServerTool{
		Tool: newAppTool(
			"detect_logic_app_sku",
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDescription("Reports whether a logic app is a Consumption or a Standard logic app."),
		),
		Handler: handle("detect_logic_app_sku", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			ref, err := t.appRef(request)
			if err != nil {
				return nil, err
			}

			kind, err := t.manager.DetectBackendKind(ctx, ref.SubscriptionId, ref.ResourceGroup, ref.Name)
			if err != nil {
				return nil, err
			}

			return skuResult{LogicAppName: ref.Name, Sku: kind}, nil
		}),
	}
}
