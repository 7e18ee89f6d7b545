// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// LogicApiVersion is the Microsoft.Logic api-version used for Consumption workflows.
const LogicApiVersion = "2019-05-01"

// LogicWorkflow is a Consumption logic app (Microsoft.Logic/workflows). The resource is also its single workflow.
type LogicWorkflow struct {
	Id         string                  `json:"id,omitempty"`
	Name       string                  `json:"name,omitempty"`
	Type       string                  `json:"type,omitempty"`
	Location   string                  `json:"location,omitempty"`
	Tags       map[string]string       `json:"tags,omitempty"`
	Properties LogicWorkflowProperties `json:"properties"`
}

type LogicWorkflowProperties struct {
	State          string          `json:"state,omitempty"`
	CreatedTime    string          `json:"createdTime,omitempty"`
	ChangedTime    string          `json:"changedTime,omitempty"`
	Version        string          `json:"version,omitempty"`
	AccessEndpoint string          `json:"accessEndpoint,omitempty"`
	Definition     json.RawMessage `json:"definition,omitempty"`
	Parameters     json.RawMessage `json:"parameters,omitempty"`
}

// LogicWorkflowPath returns the ARM path of a Consumption workflow.
func LogicWorkflowPath(subscriptionId string, resourceGroup string, workflowName string) string {
	return fmt.Sprintf(
		"/subscriptions/%s/resourceGroups/%s/providers/Microsoft.Logic/workflows/%s",
		url.PathEscape(subscriptionId),
		url.PathEscape(resourceGroup),
		url.PathEscape(workflowName),
	)
}

// GetLogicWorkflow fetches a Consumption workflow. A missing workflow surfaces as a 404 *azcore.ResponseError.
func (cli *AzureClient) GetLogicWorkflow(
	ctx context.Context,
	subscriptionId string,
	resourceGroup string,
	workflowName string,
) (*LogicWorkflow, error) {
	body, err := cli.Request(ctx, LogicWorkflowPath(subscriptionId, resourceGroup, workflowName), &RequestOptions{
		ApiVersion: LogicApiVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("getting logic workflow '%s': %w", workflowName, err)
	}

	var workflow LogicWorkflow
	if err := json.Unmarshal(body, &workflow); err != nil {
		return nil, fmt.Errorf("unmarshalling logic workflow: %w", err)
	}

	return &workflow, nil
}

// ListLogicWorkflows lists the Consumption workflows of a resource group, or of the subscription when resourceGroup
// is empty.
func (cli *AzureClient) ListLogicWorkflows(
	ctx context.Context,
	subscriptionId string,
	resourceGroup string,
) ([]*LogicWorkflow, error) {
	path := fmt.Sprintf("/subscriptions/%s", url.PathEscape(subscriptionId))
	if resourceGroup != "" {
		path += fmt.Sprintf("/resourceGroups/%s", url.PathEscape(resourceGroup))
	}
	path += "/providers/Microsoft.Logic/workflows"

	values, err := cli.ListAll(ctx, path, &RequestOptions{ApiVersion: LogicApiVersion})
	if err != nil {
		return nil, fmt.Errorf("listing logic workflows: %w", err)
	}

	workflows := make([]*LogicWorkflow, 0, len(values))
	for _, value := range values {
		var workflow LogicWorkflow
		if err := json.Unmarshal(value, &workflow); err != nil {
			return nil, fmt.Errorf("unmarshalling logic workflow: %w", err)
		}

		workflows = append(workflows, &workflow)
	}

	return workflows, nil
}

// PutLogicWorkflow creates or replaces a Consumption workflow.
func (cli *AzureClient) PutLogicWorkflow(
	ctx context.Context,
	subscriptionId string,
	resourceGroup string,
	workflowName string,
	workflow *LogicWorkflow,
) (*LogicWorkflow, error) {
	body, err := cli.Request(ctx, LogicWorkflowPath(subscriptionId, resourceGroup, workflowName), &RequestOptions{
		Method:     http.MethodPut,
		ApiVersion: LogicApiVersion,
		Body:       workflow,
	})
	if err != nil {
		return nil, fmt.Errorf("saving logic workflow '%s': %w", workflowName, err)
	}

	var saved LogicWorkflow
	if err := json.Unmarshal(body, &saved); err != nil {
		return nil, fmt.Errorf("unmarshalling logic workflow: %w", err)
	}

	return &saved, nil
}

// DeleteLogicWorkflow deletes a Consumption workflow.
func (cli *AzureClient) DeleteLogicWorkflow(
	ctx context.Context,
	subscriptionId string,
	resourceGroup string,
	workflowName string,
) error {
	_, err := cli.Request(ctx, LogicWorkflowPath(subscriptionId, resourceGroup, workflowName), &RequestOptions{
		Method:     http.MethodDelete,
		ApiVersion: LogicApiVersion,
	})
	if err != nil {
		return fmt.Errorf("deleting logic workflow '%s': %w", workflowName, err)
	}

	return nil
}

// SetLogicWorkflowEnabled calls the enable or disable action of a Consumption workflow.
func (cli *AzureClient) SetLogicWorkflowEnabled(
	ctx context.Context,
	subscriptionId string,
	resourceGroup string,
	workflowName string,
	enabled bool,
) error {
	action := "disable"
	if enabled {
		action = "enable"
	}

	path := LogicWorkflowPath(subscriptionId, resourceGroup, workflowName) + "/" + action
	_, err := cli.Request(ctx, path, &RequestOptions{
		Method:     http.MethodPost,
		ApiVersion: LogicApiVersion,
	})
	if err != nil {
		return fmt.Errorf("failed to %s logic workflow '%s': %w", action, workflowName, err)
	}

	return nil
}
