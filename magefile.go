//go:build mage
// +build mage

// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/mg"
)

const versionVar = "github.com/azure/logicapps-mcp/internal.Version"

type Server mg.Namespace

// Build compiles ./bin/logicapps-mcp. VERSION and COMMIT, when set, are stamped into the binary.
func (Server) Build(ctx context.Context) error {
	args := []string{"build", "-o", "./bin/logicapps-mcp"}
	if version := os.Getenv("VERSION"); version != "" {
		commit := os.Getenv("COMMIT")
		if commit == "" {
			commit = strings.Repeat("0", 40)
		}

		args = append(args, "-ldflags", fmt.Sprintf("-X '%s=%s (commit %s)'", versionVar, version, commit))
	}

	cmdStr, cmd := runIn(".", "go", append(args, ".")...)
	fmt.Println(cmdStr)
	return cmd()
}

// Test runs the unit tests with the race detector.
func (Server) Test(ctx context.Context) error {
	cmdStr, cmd := runIn(".", "go", "test", "-race", "./...")
	fmt.Println(cmdStr)
	return cmd()
}

func runIn(cwd string, cmd string, args ...string) (string, func() error) {
	c := exec.Command(cmd, args...)
	c.Dir = cwd
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.String(), func() error {
		return c.Run()
	}
}
