// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package tools

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/azure/logicapps-mcp/pkg/logicapps"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func triggerParam() mcp.ToolOption {
	return mcp.WithString(argTriggerName,
		mcp.Description("Name of the trigger, as returned by get_workflow_triggers"),
		mcp.Required(),
	)
}

func (t *Toolset) NewGetWorkflowTriggersTool() server.ServerTool {
	return server.ServerTool{
		Tool: newAppTool(
			"get_workflow_triggers",
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDescription("Lists the triggers of a workflow with their state, recurrence and last execution."),
			workflowParam(),
		),
		Handler: handle("get_workflow_triggers", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			ref, err := t.appRef(request)
			if err != nil {
				return nil, err
			}

			return t.manager.GetWorkflowTriggers(ctx, ref, request.GetString(argWorkflow, ""))
		}),
	}
}

func (t *Toolset) NewGetTriggerHistoryTool() server.ServerTool {
	return server.ServerTool{
		Tool: newAppTool(
			"get_trigger_history",
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDescription(heredoc.Doc(`
				Lists the most recent evaluations of a trigger, including those that did not fire a run.
			`)),
			workflowParam(),
			triggerParam(),
			mcp.WithNumber(argTop,
				mcp.Description(fmt.Sprintf(
					"Maximum number of entries to return (default %d)", logicapps.DefaultTriggerHistoryTop)),
				mcp.Min(1),
			),
		),
		Handler: handle("get_trigger_history", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			ref, err := t.appRef(request)
			if err != nil {
				return nil, err
			}

			triggerName, err := requireString(request, argTriggerName)
			if err != nil {
				return nil, err
			}

			return t.manager.GetTriggerHistory(
				ctx,
				ref,
				request.GetString(argWorkflow, ""),
				triggerName,
				request.GetInt(argTop, logicapps.DefaultTriggerHistoryTop),
			)
		}),
	}
}

type runTriggerResult struct {
	Success          bool   `json:"success"`
	TriggerName      string `json:"triggerName"`
	ClientTrackingId string `json:"clientTrackingId"`
}

func (t *Toolset) NewRunTriggerTool() server.ServerTool {
	return server.ServerTool{
		Tool: newAppTool(
			"run_trigger",
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithDescription(heredoc.Doc(`
				Fires a trigger manually, starting a new run. The returned client tracking id can be
				used to find the run with list_run_history.
			`)),
			workflowParam(),
			triggerParam(),
		),
		Handler: handle("run_trigger", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			ref, err := t.appRef(request)
			if err != nil {
				return nil, err
			}

			triggerName, err := requireString(request, argTriggerName)
			if err != nil {
				return nil, err
			}

			trackingId, err := t.manager.RunTrigger(ctx, ref, request.GetString(argWorkflow, ""), triggerName)
			if err != nil {
				return nil, err
			}

			return runTriggerResult{Success: true, TriggerName: triggerName, ClientTrackingId: trackingId}, nil
		}),
	}
}

func (t *Toolset) NewGetTriggerCallbackUrlTool() server.ServerTool {
	return server.ServerTool{
		Tool: newAppTool(
			"get_trigger_callback_url",
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDescription("Returns the signed invocation URL of a request (HTTP) trigger."),
			workflowParam(),
			triggerParam(),
		),
		Handler: handle("get_trigger_callback_url", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			ref, err := t.appRef(request)
			if err != nil {
				return nil, err
			}

			triggerName, err := requireString(request, argTriggerName)
			if err != nil {
				return nil, err
			}

			return t.manager.GetTriggerCallbackUrl(ctx, ref, request.GetString(argWorkflow, ""), triggerName)
		}),
	}
}
