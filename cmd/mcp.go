// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/azure/logicapps-mcp/internal"
	mcpserver "github.com/azure/logicapps-mcp/internal/mcp"
	"github.com/azure/logicapps-mcp/internal/mcp/tools"
	"github.com/azure/logicapps-mcp/internal/tracing"
	"github.com/azure/logicapps-mcp/pkg/account"
	"github.com/azure/logicapps-mcp/pkg/azapi"
	"github.com/azure/logicapps-mcp/pkg/azsdk"
	"github.com/azure/logicapps-mcp/pkg/config"
	"github.com/azure/logicapps-mcp/pkg/logicapps"
	"github.com/spf13/cobra"
)

const tracingShutdownTimeout = 5 * time.Second

func newMcpCommand(flags *globalFlags) *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Manage the Model Context Protocol (MCP) server.",
	}

	mcpCmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Starts the MCP server.",
		Long: heredoc.Doc(`
			Starts the Model Context Protocol (MCP) server on stdio.

			Configure your MCP client to launch 'logicapps-mcp mcp start'. Settings are read from the
			configuration file and from LOGICAPPS_MCP_* environment variables.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMcpServer(cmd.Context(), flags)
		},
	})

	return mcpCmd
}

func runMcpServer(ctx context.Context, flags *globalFlags) error {
	settings, err := config.LoadSettings(flags.configPath)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	shutdownTracing, err := tracing.Start(ctx, tracing.Options{
		OtlpEndpoint:   settings.Tracing.OtlpEndpoint,
		File:           settings.Tracing.File,
		ServiceVersion: internal.GetVersionNumber(),
	})
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tracingShutdownTimeout)
		defer cancel()

		if err := shutdownTracing(ctx); err != nil {
			log.Printf("non-graceful tracing shutdown: %v", err)
		}
	}()

	manager, err := newManager(settings)
	if err != nil {
		return err
	}

	toolset := tools.NewToolset(manager, settings.Azure.DefaultSubscriptionId)
	return mcpserver.ServeStdio(mcpserver.NewServer(toolset))
}

// newManager wires the Azure clients, the resource cache and the logic app manager from settings.
func newManager(settings *config.Settings) (*logicapps.Manager, error) {
	cloud, err := azsdk.ParseCloud(settings.Azure.Cloud)
	if err != nil {
		return nil, err
	}

	builder := azsdk.NewClientOptionsBuilder().
		WithCloud(cloud).
		SetUserAgent(internal.MakeUserAgentString("")).
		WithCorrelation()

	if rps := settings.Http.RequestsPerSecond; rps > 0 {
		builder.WithPerCallPolicy(azsdk.NewRateLimitPolicy(rps, int(rps)))
	}

	armClientOptions := builder.BuildArmClientOptions()
	credentialProvider := account.NewCredentialProvider(cloud, nil)

	manager := logicapps.NewManager(
		azapi.NewAzureClient(credentialProvider, armClientOptions),
		azapi.NewRuntimeClient(builder.BuildCoreClientOptions()),
		logicapps.NewResourceCache(nil, logicapps.DefaultCacheTTL),
		settings.Batch.Concurrency,
	)
	manager.SetCacheTTL(settings.Cache.TTL())

	return manager, nil
}
