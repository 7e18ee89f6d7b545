// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/azure/logicapps-mcp/internal/mcp/tools"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newToolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Lists the tools served by the MCP server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printTools(cmd.OutOrStdout())
		},
	}
}

func printTools(w io.Writer) error {
	// Listing only reads tool metadata, so no Azure clients are needed.
	for _, tool := range tools.NewToolset(nil, "").All() {
		summary, _, _ := strings.Cut(strings.TrimSpace(tool.Tool.Description), "\n")
		if _, err := fmt.Fprintf(w, "%s\n    %s\n", color.CyanString(tool.Tool.Name), summary); err != nil {
			return err
		}
	}

	return nil
}
