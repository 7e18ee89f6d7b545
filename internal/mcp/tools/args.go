// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/azure/logicapps-mcp/pkg/logicapps"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	argSubscriptionId  = "subscriptionId"
	argResourceGroup   = "resourceGroupName"
	argLogicApp        = "logicAppName"
	argWorkflow        = "workflowName"
	argRunId           = "runId"
	argTriggerName     = "triggerName"
	argConcurrency     = "concurrency"
	argDefinition      = "definition"
	argConnectionName  = "connectionName"
	argTop             = "top"
	workflowNameDetail = "Name of the workflow. Required for Standard logic apps, ignored for Consumption logic apps."
)

func subscriptionParam() mcp.ToolOption {
	return mcp.WithString(argSubscriptionId,
		mcp.Description("Azure subscription ID. Defaults to the configured subscription when omitted."),
	)
}

func resourceGroupParam() mcp.ToolOption {
	return mcp.WithString(argResourceGroup,
		mcp.Description("Resource group containing the logic app"),
		mcp.Required(),
	)
}

func logicAppParam() mcp.ToolOption {
	return mcp.WithString(argLogicApp,
		mcp.Description("Name of the logic app"),
		mcp.Required(),
	)
}

func workflowParam() mcp.ToolOption {
	return mcp.WithString(argWorkflow, mcp.Description(workflowNameDetail))
}

func concurrencyParam() mcp.ToolOption {
	return mcp.WithNumber(argConcurrency,
		mcp.Description(fmt.Sprintf(
			"Maximum number of operations running at once (default %d)", logicapps.DefaultBatchConcurrency)),
		mcp.Min(1),
	)
}

// newAppTool creates a tool addressing one logic app: the app parameters come first, followed by options.
func newAppTool(name string, options ...mcp.ToolOption) mcp.Tool {
	return mcp.NewTool(name, append(
		[]mcp.ToolOption{subscriptionParam(), resourceGroupParam(), logicAppParam()},
		options...,
	)...)
}

func (t *Toolset) subscriptionId(request mcp.CallToolRequest) (string, error) {
	if subscriptionId := strings.TrimSpace(request.GetString(argSubscriptionId, "")); subscriptionId != "" {
		return subscriptionId, nil
	}

	if t.defaultSubscriptionId != "" {
		return t.defaultSubscriptionId, nil
	}

	return "", &logicapps.InvalidParameterError{
		Parameter: argSubscriptionId,
		Reason:    "no subscription given and no default subscription configured",
	}
}

func (t *Toolset) appRef(request mcp.CallToolRequest) (logicapps.AppRef, error) {
	subscriptionId, err := t.subscriptionId(request)
	if err != nil {
		return logicapps.AppRef{}, err
	}

	resourceGroup, err := requireString(request, argResourceGroup)
	if err != nil {
		return logicapps.AppRef{}, err
	}

	appName, err := requireString(request, argLogicApp)
	if err != nil {
		return logicapps.AppRef{}, err
	}

	return logicapps.AppRef{
		SubscriptionId: subscriptionId,
		ResourceGroup:  resourceGroup,
		Name:           appName,
	}, nil
}

func requireString(request mcp.CallToolRequest, name string) (string, error) {
	value, err := request.RequireString(name)
	if err != nil || strings.TrimSpace(value) == "" {
		return "", &logicapps.InvalidParameterError{Parameter: name, Reason: "is required"}
	}

	return strings.TrimSpace(value), nil
}

// definitionArg accepts the workflow definition as a JSON object or as a string holding one.
func definitionArg(request mcp.CallToolRequest) (json.RawMessage, error) {
	value, has := request.GetArguments()[argDefinition]
	if !has || value == nil {
		return nil, &logicapps.InvalidParameterError{Parameter: argDefinition, Reason: "is required"}
	}

	if text, isString := value.(string); isString {
		if !json.Valid([]byte(text)) {
			return nil, &logicapps.InvalidParameterError{Parameter: argDefinition, Reason: "is not valid JSON"}
		}

		return json.RawMessage(text), nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, &logicapps.InvalidParameterError{Parameter: argDefinition, Reason: err.Error()}
	}

	return raw, nil
}
