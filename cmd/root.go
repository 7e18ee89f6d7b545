// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package cmd holds the logicapps-mcp command line.
package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	debug      bool
	configPath string
}

func (f *globalFlags) Bind(flags *pflag.FlagSet) {
	// --debug is read by main before parsing; it is declared here so cobra accepts it.
	flags.BoolVar(&f.debug, "debug", false, "Write diagnostic logs to stderr.")
	flags.StringVar(
		&f.configPath,
		"config",
		"",
		"Path of the configuration file. Defaults to ~/.logicapps-mcp/config.json.",
	)
}

func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "logicapps-mcp <command> [options]",
		Short: "Model Context Protocol server for Azure Logic Apps.",
		Long: heredoc.Doc(`
			Model Context Protocol server for Azure Logic Apps.

			Exposes tools to inspect and manage Consumption and Standard logic apps, their workflows,
			runs, triggers and connections. Authentication uses the Azure CLI login, falling back to
			environment, workload identity and managed identity credentials.
		`),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	flags.Bind(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newMcpCommand(flags))
	rootCmd.AddCommand(newConfigCommand(flags))
	rootCmd.AddCommand(newToolsCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
