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

const argKind = "kind"

func kindParam() mcp.ToolOption {
	return mcp.WithString(argKind,
		mcp.Description("Workflow kind of a Standard logic app workflow (default Stateful)"),
		mcp.Enum("Stateful", "Stateless"),
	)
}

func definitionParam() mcp.ToolOption {
	return mcp.WithObject(argDefinition,
		mcp.Description(heredoc.Doc(`
			Workflow definition in the Workflow Definition Language, i.e. the object holding
			$schema, contentVersion, triggers, actions and outputs.
		`)),
		mcp.Required(),
	)
}

func (t *Toolset) NewGetWorkflowDefinitionTool() server.ServerTool {
	return server.ServerTool{
		Tool: newAppTool(
			"get_workflow_definition",
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDescription("Returns the definition of a workflow."),
			workflowParam(),
		),
		Handler: handle("get_workflow_definition", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			ref, err := t.appRef(request)
			if err != nil {
				return nil, err
			}

			return t.manager.GetWorkflowDefinition(ctx, ref, request.GetString(argWorkflow, ""))
		}),
	}
}

func (t *Toolset) NewCreateWorkflowTool() server.ServerTool {
	return server.ServerTool{
		Tool: newAppTool(
			"create_workflow",
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithDescription(heredoc.Doc(`
				Creates a workflow. For a Standard logic app the workflow is added to the existing app.
				For Consumption a new logic app named logicAppName is created, which requires a location.
			`)),
			workflowParam(),
			definitionParam(),
			kindParam(),
			mcp.WithString("location",
				mcp.Description("Azure region of a new Consumption logic app, e.g. westus2"),
			),
		),
		Handler: handle("create_workflow", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			ref, err := t.appRef(request)
			if err != nil {
				return nil, err
			}

			definition, err := definitionArg(request)
			if err != nil {
				return nil, err
			}

			return t.manager.CreateWorkflow(ctx, ref, logicapps.CreateWorkflowOptions{
				WorkflowName: request.GetString(argWorkflow, ""),
				Definition:   definition,
				Location:     request.GetString("location", ""),
				Kind:         request.GetString(argKind, ""),
			})
		}),
	}
}

func (t *Toolset) NewUpdateWorkflowTool() server.ServerTool {
	return server.ServerTool{
		Tool: newAppTool(
			"update_workflow",
			mcp.WithDestructiveHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithDescription(heredoc.Doc(`
				Replaces the definition of an existing workflow. Other settings of the logic app,
				such as its location, tags, state and parameters, are kept.
			`)),
			workflowParam(),
			definitionParam(),
			kindParam(),
		),
		Handler: handle("update_workflow", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			ref, err := t.appRef(request)
			if err != nil {
				return nil, err
			}

			definition, err := definitionArg(request)
			if err != nil {
				return nil, err
			}

			return t.manager.UpdateWorkflow(
				ctx, ref, request.GetString(argWorkflow, ""), definition, request.GetString(argKind, ""))
		}),
	}
}

type statusResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (t *Toolset) NewDeleteWorkflowTool() server.ServerTool {
	return server.ServerTool{
		Tool: newAppTool(
			"delete_workflow",
			mcp.WithDestructiveHintAnnotation(true),
			mcp.WithDescription(heredoc.Doc(`
				Deletes a workflow. Deleting the workflow of a Consumption logic app deletes the logic app
				itself. Run history of the workflow is lost.
			`)),
			workflowParam(),
		),
		Handler: handle("delete_workflow", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			ref, err := t.appRef(request)
			if err != nil {
				return nil, err
			}

			workflowName := request.GetString(argWorkflow, "")
			if err := t.manager.DeleteWorkflow(ctx, ref, workflowName); err != nil {
				return nil, err
			}

			return statusResult{Success: true, Message: fmt.Sprintf("deleted %s", describeWorkflow(ref, workflowName))}, nil
		}),
	}
}

func (t *Toolset) NewEnableWorkflowTool() server.ServerTool {
	return t.newSetWorkflowStateTool("enable_workflow", true)
}

func (t *Toolset) NewDisableWorkflowTool() server.ServerTool {
	return t.newSetWorkflowStateTool("disable_workflow", false)
}

func (t *Toolset) newSetWorkflowStateTool(name string, enabled bool) server.ServerTool {
	verb := "Disables"
	if enabled {
		verb = "Enables"
	}

	return server.ServerTool{
		Tool: newAppTool(
			name,
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithDescription(fmt.Sprintf(heredoc.Doc(`
				%s a workflow. For a Consumption logic app the logic app itself is toggled;
				for a Standard logic app only the named workflow is.
			`), verb)),
			workflowParam(),
		),
		Handler: handle(name, func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			ref, err := t.appRef(request)
			if err != nil {
				return nil, err
			}

			workflowName := request.GetString(argWorkflow, "")
			if err := t.manager.SetWorkflowEnabled(ctx, ref, workflowName, enabled); err != nil {
				return nil, err
			}

			state := "disabled"
			if enabled {
				state = "enabled"
			}

			return statusResult{Success: true, Message: fmt.Sprintf("%s %s", state, describeWorkflow(ref, workflowName))}, nil
		}),
	}
}

func describeWorkflow(ref logicapps.AppRef, workflowName string) string {
	if workflowName == "" {
		return fmt.Sprintf("logic app '%s'", ref.Name)
	}

	return fmt.Sprintf("workflow '%s' of logic app '%s'", workflowName, ref.Name)
}

func (t *Toolset) NewGetConnectionsJsonTool() server.ServerTool {
	return server.ServerTool{
		Tool: newAppTool(
			"get_connections_json",
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDescription(heredoc.Doc(`
				Returns the connections.json file of a Standard logic app, which declares the managed API
				and service provider connections its workflows reference.
			`)),
		),
		Handler: handle("get_connections_json", func(ctx context.Context, request mcp.CallToolRequest) (any, error) {
			ref, err := t.appRef(request)
			if err != nil {
				return nil, err
			}

			return t.manager.GetConnectionsJson(ctx, ref)
		}),
	}
}
