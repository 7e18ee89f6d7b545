// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package internal

import (
	"strings"

	"github.com/blang/semver/v4"
)

// Version is the version string of the server, overridden at build time with
// -ldflags "-X github.com/azure/logicapps-mcp/internal.Version=<version> (commit <sha>)".
var Version = "0.0.0-dev.0 (commit 0000000000000000000000000000000000000000)"

// GetVersionNumber returns the semantic version part of Version, or "unknown" when Version does not start with one.
func GetVersionNumber() string {
	fields := strings.Fields(Version)
	if len(fields) == 0 {
		return "unknown"
	}

	version, err := semver.Parse(fields[0])
	if err != nil {
		return "unknown"
	}

	return version.String()
}

// GetCommit returns the commit sha recorded in Version, or "unknown".
func GetCommit() string {
	start := strings.Index(Version, "(commit ")
	end := strings.LastIndex(Version, ")")
	if start < 0 || end < start {
		return "unknown"
	}

	return Version[start+len("(commit "): end]
}
