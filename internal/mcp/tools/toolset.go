// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package tools exposes logic app operations as MCP tools.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/azure/logicapps-mcp/internal"
	"github.com/azure/logicapps-mcp/internal/tracing"
	"github.com/azure/logicapps-mcp/pkg/logicapps"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Toolset builds the logic app tools on top of a Manager.
type Toolset struct {
	manager               *logicapps.Manager
	defaultSubscriptionId string
}

// NewToolset creates the tools. defaultSubscriptionId is used by tools called without a subscriptionId.
func NewToolset(manager *logicapps.Manager, defaultSubscriptionId string) *Toolset {
	return &Toolset{
		manager:               manager,
		defaultSubscriptionId: defaultSubscriptionId,
	}
}

// All returns every tool, grouped by area.
func (t *Toolset) All() []server.ServerTool {
	return []server.ServerTool{
		t.NewListSubscriptionsTool(),
		t.NewListLogicAppsTool(),
		t.NewSearchLogicAppsTool(),
		t.NewListWorkflowsTool(),
		t.NewDetectLogicAppSkuTool(),

		t.NewGetWorkflowDefinitionTool(),
		t.NewCreateWorkflowTool(),
		t.NewUpdateWorkflowTool(),
		t.NewDeleteWorkflowTool(),
		t.NewEnableWorkflowTool(),
		t.NewDisableWorkflowTool(),

		t.NewListRunHistoryTool(),
		t.NewGetRunDetailsTool(),
		t.NewGetRunActionsTool(),
		t.NewCancelRunTool(),
		t.NewCancelRunsTool(),

		t.NewGetWorkflowTriggersTool(),
		t.NewGetTriggerHistoryTool(),
		t.NewRunTriggerTool(),
		t.NewGetTriggerCallbackUrlTool(),

		t.NewBatchEnableWorkflowsTool(),
		t.NewBatchDisableWorkflowsTool(),

		t.NewListConnectionsTool(),
		t.NewGetConnectionDetailsTool(),
		t.NewGetConnectionsJsonTool(),

		t.NewClearCacheTool(),
	}
}

// toolFunc is the body of a tool. Its result is rendered as JSON.
type toolFunc func(ctx context.Context, request mcp.CallToolRequest) (any, error)

// handle wraps fn in a span named tools/<name>. Failures become error results so the agent can read them; Go errors
// are never returned to the MCP server.
func handle(name string, fn toolFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := tracing.Tracer().Start(ctx, "tools/"+name)
		defer span.End()

		span.SetAttributes(tracing.AttrToolName.String(name))
		span.SetAttributes(requestAttributes(request)...)

		start := time.Now()
		result, err := fn(ctx, request)
		if err != nil {
			log.Printf("tool %s failed after %s: %v", name, time.Since(start), err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return errorResult(err), nil
		}

		log.Printf("tool %s completed in %s", name, time.Since(start))
		return jsonResult(result)
	}
}

func requestAttributes(request mcp.CallToolRequest) []attribute.KeyValue {
	attributes := []attribute.KeyValue{}
	for key, attr := range map[string]attribute.Key{
		"subscriptionId":    tracing.AttrSubscriptionId,
		"resourceGroupName": tracing.AttrResourceGroup,
		"logicAppName":      tracing.AttrLogicApp,
	} {
		if value := request.GetString(key, ""); value != "" {
			attributes = append(attributes, attr.String(value))
		}
	}

	return attributes
}

func jsonResult(value any) (*mcp.CallToolResult, error) {
	if raw, ok := value.(json.RawMessage); ok {
		return mcp.NewToolResultText(string(raw)), nil
	}

	body, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(body)), nil
}

func errorResult(err error) *mcp.CallToolResult {
	message := err.Error()
	if suggestion := suggestionFor(err); suggestion != "" {
		message = fmt.Sprintf("%s\n\nSuggestion: %s", message, suggestion)
	}

	return mcp.NewToolResultError(message)
}

func suggestionFor(err error) string {
	var suggestionErr *internal.ErrorWithSuggestion
	if errors.As(err, &suggestionErr) {
		return suggestionErr.Suggestion
	}

	var notFoundErr *logicapps.ResourceNotFoundError
	if errors.As(err, &notFoundErr) {
		return "Use list_logic_apps or search_logic_apps to find the logic app and its resource group."
	}

	var paramErr *logicapps.InvalidParameterError
	if errors.As(err, &paramErr) && paramErr.Parameter == argWorkflow {
		return "Use list_workflows to find the workflow names of the logic app."
	}

	return ""
}
