// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	azcorelog "github.com/Azure/azure-sdk-for-go/sdk/azcore/log"
	"github.com/azure/logicapps-mcp/cmd"
	"github.com/azure/logicapps-mcp/internal/tracing"
	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/spf13/pflag"
)

const debugEnvVar = "LOGICAPPS_MCP_DEBUG"

func main() {
	ctx := tracing.ContextFromEnv(context.Background())

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// stdout carries the MCP protocol, so diagnostics only ever go to stderr.
	if isDebugEnabled() {
		log.SetOutput(colorable.NewColorableStderr())
		azcorelog.SetListener(func(event azcorelog.Event, msg string) {
			log.Printf("%s: %s\n", event, msg)
		})
	} else {
		log.SetOutput(io.Discard)
	}

	if err := cmd.NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(colorable.NewColorableStderr(), color.RedString("ERROR: %v", err))
		os.Exit(1)
	}
}

// isDebugEnabled checks for --debug on the command line or a truthy LOGICAPPS_MCP_DEBUG. Logging is configured before
// cobra parses the command line, so the flag is looked up here.
func isDebugEnabled() bool {
	if value, has := os.LookupEnv(debugEnvVar); has {
		if enabled, err := strconv.ParseBool(value); err == nil && enabled {
			return true
		}
	}

	debug := false
	help := false
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.BoolVar(&debug, "debug", false, "")
	flags.BoolVarP(&help, "help", "h", false, "")
	flags.SetOutput(io.Discard)

	if err := flags.Parse(os.Args[1:]); err != nil {
		return false
	}

	return debug
}
