// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package internal

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

const userSpecifiedAgentEnvironmentVariableName = "LOGICAPPS_MCP_USER_AGENT"

const productIdentifierKey = "logicapps-mcp"

// MakeUserAgentString returns the user agent sent with every Azure request, e.g.
// `logicapps-mcp/1.0.0 (Go 1.24; linux/amd64)`, followed by LOGICAPPS_MCP_USER_AGENT when that is set and by the name
// of the MCP client when known.
func MakeUserAgentString(clientName string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s/%s %s", productIdentifierKey, GetVersionNumber(), getPlatformInfo()))

	if userAgent := os.Getenv(userSpecifiedAgentEnvironmentVariableName); userAgent != "" {
		sb.WriteString(" " + userAgent)
	}

	if clientName != "" {
		sb.WriteString(" mcpclient/" + clientName)
	}

	return sb.String()
}

func getPlatformInfo() string {
	return fmt.Sprintf("(Go %s; %s/%s)", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
