// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logicapps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/azure/logicapps-mcp/pkg/azapi"
	"github.com/google/uuid"
)

const (
	DefaultRunHistoryTop     = 25
	DefaultTriggerHistoryTop = 25

	clientTrackingIdHeader = "x-ms-client-tracking-id"
)

// ListRunHistory returns the most recent runs of a workflow, newest first. filter is an OData filter such as
// "status eq 'Failed'".
func (m *Manager) ListRunHistory(
	ctx context.Context,
	ref AppRef,
	workflowName string,
	top int,
	filter string,
) ([]RunSummary, error) {
	endpoint, err := m.workflowEndpoint(ctx, ref, workflowName)
	if err != nil {
		return nil, err
	}

	if top <= 0 {
		top = DefaultRunHistoryTop
	}

	query := url.Values{"$top": []string{strconv.Itoa(top)}}
	if filter != "" {
		query.Set("$filter", filter)
	}

	runs, err := endpoint.listAll(ctx, "/runs", &azapi.RequestOptions{Query: query, MaxItems: top})
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	return mapItems(runs, toRunSummary), nil
}

// GetRunDetails returns the full run resource.
func (m *Manager) GetRunDetails(
	ctx context.Context,
	ref AppRef,
	workflowName string,
	runId string,
) (json.RawMessage, error) {
	endpoint, err := m.workflowEndpoint(ctx, ref, workflowName)
	if err != nil {
		return nil, err
	}

	body, err := endpoint.call(ctx, http.MethodGet, "/runs/"+url.PathEscape(runId), nil)
	if err != nil {
		return nil, fmt.Errorf("getting run '%s': %w", runId, err)
	}

	return body, nil
}

// GetRunActions returns the status of every action executed by a run.
func (m *Manager) GetRunActions(
	ctx context.Context,
	ref AppRef,
	workflowName string,
	runId string,
) ([]ActionSummary, error) {
	endpoint, err := m.workflowEndpoint(ctx, ref, workflowName)
	if err != nil {
		return nil, err
	}

	actions, err := endpoint.listAll(ctx, "/runs/"+url.PathEscape(runId)+"/actions", nil)
	if err != nil {
		return nil, fmt.Errorf("listing actions of run '%s': %w", runId, err)
	}

	return mapItems(actions, toActionSummary), nil
}

// CancelRun cancels one running or waiting run.
func (m *Manager) CancelRun(ctx context.Context, ref AppRef, workflowName string, runId string) error {
	endpoint, err := m.workflowEndpoint(ctx, ref, workflowName)
	if err != nil {
		return err
	}

	if _, err := endpoint.call(ctx, http.MethodPost, "/runs/"+url.PathEscape(runId)+"/cancel", nil); err != nil {
		return fmt.Errorf("cancelling run '%s': %w", runId, err)
	}

	return nil
}

// CancelRuns cancels many runs of one workflow. The app is resolved once up front so a missing app or a missing
// Standard workflow name fails the call instead of every item. A concurrency below 1 uses the configured default.
func (m *Manager) CancelRuns(
	ctx context.Context,
	ref AppRef,
	runIds []string,
	workflowName string,
	concurrency int,
) (*BatchResult, error) {
	if len(runIds) > 0 {
		app, err := m.resolver.Resolve(ctx, ref)
		if err != nil {
			return nil, err
		}

		if _, standard := app.(StandardApp); standard && workflowName == "" {
			return nil, workflowNameRequired()
		}
	}

	return m.batch.CancelRuns(ctx, ref, runIds, workflowName, concurrency)
}

func (m *Manager) BatchEnableWorkflows(
	ctx context.Context,
	ref AppRef,
	workflowNames []string,
	concurrency int,
) (*BatchResult, error) {
	return m.batch.BatchEnableWorkflows(ctx, ref, workflowNames, concurrency)
}

func (m *Manager) BatchDisableWorkflows(
	ctx context.Context,
	ref AppRef,
	workflowNames []string,
	concurrency int,
) (*BatchResult, error) {
	return m.batch.BatchDisableWorkflows(ctx, ref, workflowNames, concurrency)
}

// GetWorkflowTriggers lists the triggers of a workflow.
func (m *Manager) GetWorkflowTriggers(ctx context.Context, ref AppRef, workflowName string) ([]TriggerSummary, error) {
	endpoint, err := m.workflowEndpoint(ctx, ref, workflowName)
	if err != nil {
		return nil, err
	}

	triggers, err := endpoint.listAll(ctx, "/triggers", nil)
	if err != nil {
		return nil, fmt.Errorf("listing triggers: %w", err)
	}

	return mapItems(triggers, toTriggerSummary), nil
}

// GetTriggerHistory returns the most recent evaluations of a trigger.
func (m *Manager) GetTriggerHistory(
	ctx context.Context,
	ref AppRef,
	workflowName string,
	triggerName string,
	top int,
) ([]TriggerHistorySummary, error) {
	endpoint, err := m.workflowEndpoint(ctx, ref, workflowName)
	if err != nil {
		return nil, err
	}

	if top <= 0 {
		top = DefaultTriggerHistoryTop
	}

	histories, err := endpoint.listAll(ctx, "/triggers/"+url.PathEscape(triggerName)+"/histories", &azapi.RequestOptions{
		Query:    url.Values{"$top": []string{strconv.Itoa(top)}},
		MaxItems: top,
	})
	if err != nil {
		return nil, fmt.Errorf("listing history of trigger '%s': %w", triggerName, err)
	}

	return mapItems(histories, toTriggerHistorySummary), nil
}

// RunTrigger fires a trigger manually and returns the client tracking id stamped on the resulting run.
func (m *Manager) RunTrigger(ctx context.Context, ref AppRef, workflowName string, triggerName string) (string, error) {
	endpoint, err := m.workflowEndpoint(ctx, ref, workflowName)
	if err != nil {
		return "", err
	}

	trackingId := uuid.NewString()
	_, err = endpoint.call(ctx, http.MethodPost, "/triggers/"+url.PathEscape(triggerName)+"/run", &azapi.RequestOptions{
		Headers: map[string]string{clientTrackingIdHeader: trackingId},
	})
	if err != nil {
		return "", fmt.Errorf("running trigger '%s': %w", triggerName, err)
	}

	return trackingId, nil
}

// GetTriggerCallbackUrl returns the invocation URL of a request trigger.
func (m *Manager) GetTriggerCallbackUrl(
	ctx context.Context,
	ref AppRef,
	workflowName string,
	triggerName string,
) (json.RawMessage, error) {
	endpoint, err := m.workflowEndpoint(ctx, ref, workflowName)
	if err != nil {
		return nil, err
	}

	body, err := endpoint.call(ctx, http.MethodPost, "/triggers/"+url.PathEscape(triggerName)+"/listCallbackUrl", nil)
	if err != nil {
		return nil, fmt.Errorf("getting callback url of trigger '%s': %w", triggerName, err)
	}

	return body, nil
}

// ListConnections lists the API connections of a resource group.
func (m *Manager) ListConnections(
	ctx context.Context,
	subscriptionId string,
	resourceGroup string,
) ([]*azapi.Resource, error) {
	return m.azure.ListConnections(ctx, subscriptionId, resourceGroup)
}

// GetConnectionDetails returns the status and parameter names of an API connection. Parameter values are not
// returned.
func (m *Manager) GetConnectionDetails(
	ctx context.Context,
	subscriptionId string,
	resourceGroup string,
	connectionName string,
) (*ConnectionDetails, error) {
	body, err := m.azure.GetConnection(ctx, subscriptionId, resourceGroup, connectionName)
	if err != nil {
		return nil, err
	}

	details := toConnectionDetails(body)
	return &details, nil
}
