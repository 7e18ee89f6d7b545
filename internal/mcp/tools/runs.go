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

func runIdParam() mcp.ToolOption {
	return mcp.WithString(argRunId,
		mcp.Description("Name of the run, as returned by list_run_history"),
		mcp.Required(),
	)
}

func (t *Toolset) NewListRunHistoryTool() server.ServerTool {
	return server.ServerTool{
		Tool: newAppTool(
			"list_run_history",
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDescription("Lists the most recent runs of a workflow, newest first."),
			workflowParam(),
			mcp.WithNumber(argTop,
				mcp.Description(fmt.Sprintf("Maximum number of runs to return (default %d)", logicapps.DefaultRunHistoryTop)),
				mcp.Min(1),
			),
			mcp.WithString("filter",
				mcp.Description(heredoc.Doc(`
					OData filter on the runs, e.g. "status eq 'Failed'" or
					"startTime ge 2024-01-01T00:00:00Z"
				`)),
			),
		),
		Handler: handle("list_run_history", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			ref, err := t.appRef(request)
			if err != nil {
				return nil, err
			}

			return t.manager.ListRunHistory(
				ctx,
				ref,
				request.GetString(argWorkflow, ""),
				request.GetInt(argTop, logicapps.DefaultRunHistoryTop),
				request.GetString("filter", ""),
			)
		}),
	}
}

func (t *Toolset) NewGetRunDetailsTool() server.ServerTool {
	return server.ServerTool{
		Tool: newAppTool(
			"get_run_details",
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDescription("Returns a workflow run, including its status, trigger, outputs and error."),
			workflowParam(),
			runIdParam(),
		),
		Handler: handle("get_run_details", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			ref, err := t.appRef(request)
			if err != nil {
				return nil, err
			}

			runId, err := requireString(request, argRunId)
			if err != nil {
				return nil, err
			}

			return t.manager.GetRunDetails(ctx, ref, request.GetString(argWorkflow, ""), runId)
		}),
	}
}

func (t *Toolset) NewGetRunActionsTool() server.ServerTool {
	return server.ServerTool{
		Tool: newAppTool(
			"get_run_actions",
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDescription(heredoc.Doc(`
				Lists the actions executed by a workflow run with their status and error.
				Use this to find which action made a run fail.
			`)),
			workflowParam(),
			runIdParam(),
		),
		Handler: handle("get_run_actions", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			ref, err := t.appRef(request)
			if err != nil {
				return nil, err
			}

			runId, err := requireString(request, argRunId)
			if err != nil {
				return nil, err
			}

			return t.manager.GetRunActions(ctx, ref, request.GetString(argWorkflow, ""), runId)
		}),
	}
}

func (t *Toolset) NewCancelRunTool() server.ServerTool {
	return server.ServerTool{
		Tool: newAppTool(
			"cancel_run",
			mcp.WithDestructiveHintAnnotation(true),
			mcp.WithDescription("Cancels a running or waiting workflow run."),
			workflowParam(),
			runIdParam(),
		),
		Handler: handle("cancel_run", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			ref, err := t.appRef(request)
			if err != nil {
				return nil, err
			}

			runId, err := requireString(request, argRunId)
			if err != nil {
				return nil, err
			}

			if err := t.manager.CancelRun(ctx, ref, request.GetString(argWorkflow, ""), runId); err != nil {
				return nil, err
			}

			return statusResult{Success: true, Message: fmt.Sprintf("cancelled run '%s'", runId)}, nil
		}),
	}
}

func (t *Toolset) NewCancelRunsTool() server.ServerTool {
	return server.ServerTool{
		Tool: newAppTool(
			"cancel_runs",
			mcp.WithDestructiveHintAnnotation(true),
			mcp.WithDescription(heredoc.Doc(`
				Cancels many runs of one workflow. Each run is cancelled independently and the result
				reports the outcome of every run in input order.
			`)),
			workflowParam(),
			mcp.WithArray("runIds",
				mcp.Description("Names of the runs to cancel"),
				mcp.WithStringItems(),
				mcp.Required(),
			),
			concurrencyParam(),
		),
		Handler: handle("cancel_runs", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			ref, err := t.appRef(request)
			if err != nil {
				return nil, err
			}

			runIds, err := request.RequireStringSlice("runIds")
			if err != nil {
				return nil, &logicapps.InvalidParameterError{Parameter: "runIds", Reason: err.Error()}
			}

			return t.manager.CancelRuns(
				ctx, ref, runIds, request.GetString(argWorkflow, ""), request.GetInt(argConcurrency, 0))
		}),
	}
}
