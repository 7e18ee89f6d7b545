// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package mcp hosts the logic app tools behind a Model Context Protocol server.
package mcp

import (
	"context"
	"log"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/azure/logicapps-mcp/internal"
	"github.com/azure/logicapps-mcp/internal/mcp/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const serverName = "logicapps-mcp"

var instructions = heredoc.Doc(`
	Tools for Azure Logic Apps. Consumption logic apps hold a single workflow; Standard logic apps host
	many workflows and need a workflowName. Use list_logic_apps or search_logic_apps to find an app and
	detect_logic_app_sku to learn its sku. Use get_run_actions to diagnose a failed run.
`)

// NewServer creates the MCP server exposing every tool of toolset.
func NewServer(toolset *tools.Toolset) *server.MCPServer {
	hooks := &server.Hooks{}
	hooks.AddAfterInitialize(
		func(ctx context.Context, id any, request *mcp.InitializeRequest, result *mcp.InitializeResult) {
			log.Printf(
				"client %s %s connected (protocol %s)",
				request.Params.ClientInfo.Name,
				request.Params.ClientInfo.Version,
				request.Params.ProtocolVersion,
			)
		},
	)

	s := server.NewMCPServer(
		serverName, internal.GetVersionNumber(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithHooks(hooks),
		server.WithInstructions(instructions),
	)

	s.AddTools(toolset.All()...)

	return s
}

// ServeStdio serves s over stdin and stdout until the input is closed or the process is signaled.
func ServeStdio(s *server.MCPServer) error {
	log.Printf("serving %s %s on stdio", serverName, internal.Version)

	return server.ServeStdio(s)
}
