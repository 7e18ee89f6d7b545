// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logicapps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/azure/logicapps-mcp/pkg/azapi"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

const (
	workflowFileName       = "workflow.json"
	connectionsFileName    = "connections.json"
	defaultStandardKind    = "Stateful"
	consumptionCreateState = "Enabled"

	flowStatePrefix = "workflows."
	flowStateSuffix = ".flowstate"
)

// ListWorkflows lists the workflows of an app. A Consumption app is its own single workflow.
func (m *Manager) ListWorkflows(ctx context.Context, ref AppRef) ([]WorkflowSummary, error) {
	app, err := m.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	switch app := app.(type) {
	case ConsumptionApp:
		workflow, err := m.azure.GetLogicWorkflow(ctx, ref.SubscriptionId, ref.ResourceGroup, ref.Name)
		if err != nil {
			return nil, err
		}

		return []WorkflowSummary{{
			Name:        workflow.Name,
			State:       workflow.Properties.State,
			CreatedTime: workflow.Properties.CreatedTime,
			ChangedTime: workflow.Properties.ChangedTime,
		}}, nil
	case StandardApp:
		var (
			body       []byte
			flowStates map[string]string
		)

		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			var err error
			body, err = m.runtimeRequest(groupCtx, app, azapi.ManagementPath("workflows"), &azapi.RequestOptions{
				ApiVersion: azapi.StandardRuntimeApiVersion,
			})
			if err != nil {
				return fmt.Errorf("listing workflows of '%s': %w", ref.Name, err)
			}

			return nil
		})
		group.Go(func() error {
			states, err := m.workflowFlowStates(groupCtx, app)
			if err != nil {
				log.Printf("reading workflow flow states of '%s': %v", ref, err)
				return nil
			}

			flowStates = states
			return nil
		})

		if err := group.Wait(); err != nil {
			return nil, err
		}

		items := collectionItems(body)
		workflows := make([]WorkflowSummary, 0, len(items))
		for _, item := range items {
			workflow := toWorkflowSummary(item)
			if state, has := flowStates[strings.ToLower(workflow.Name)]; has {
				workflow.State = state
			}

			workflows = append(workflows, workflow)
		}

		return workflows, nil
	default:
		return nil, fmt.Errorf("unsupported logic app backend '%s'", app.Kind())
	}
}

// workflowFlowStates returns the Workflows.<name>.FlowState app settings of a Standard app, keyed by lower-cased
// workflow name. These settings are what enable and disable write, and they win over the state in workflow.json.
func (m *Manager) workflowFlowStates(ctx context.Context, app StandardApp) (map[string]string, error) {
	settings, err := m.azure.GetAppSettings(ctx, app.SubscriptionId, app.ResourceGroup, app.Name)
	if err != nil {
		return nil, err
	}

	states := map[string]string{}
	for key, value := range settings {
		lower := strings.ToLower(key)
		if !strings.HasPrefix(lower, flowStatePrefix) || !strings.HasSuffix(lower, flowStateSuffix) {
			continue
		}

		name := lower[len(flowStatePrefix) : len(lower)-len(flowStateSuffix)]
		if name != "" {
			states[name] = value
		}
	}

	return states, nil
}

// GetWorkflowDefinition returns the workflow definition language document of a workflow.
func (m *Manager) GetWorkflowDefinition(ctx context.Context, ref AppRef, workflowName string) (json.RawMessage, error) {
	app, err := m.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	switch app := app.(type) {
	case ConsumptionApp:
		workflow, err := m.azure.GetLogicWorkflow(ctx, ref.SubscriptionId, ref.ResourceGroup, ref.Name)
		if err != nil {
			return nil, err
		}

		return workflow.Properties.Definition, nil
	case StandardApp:
		if workflowName == "" {
			return nil, workflowNameRequired()
		}

		body, err := m.runtimeRequest(ctx, app, azapi.VfsPath(workflowName, workflowFileName), nil)
		if err != nil {
			return nil, fmt.Errorf("reading %s of workflow '%s': %w", workflowFileName, workflowName, err)
		}

		definition := gjson.GetBytes(body, "definition")
		if !definition.Exists() {
			return nil, fmt.Errorf("%s of workflow '%s' has no definition", workflowFileName, workflowName)
		}

		return json.RawMessage(definition.Raw), nil
	default:
		return nil, fmt.Errorf("unsupported logic app backend '%s'", app.Kind())
	}
}

// CreateWorkflowOptions carries the inputs of CreateWorkflow.
type CreateWorkflowOptions struct {
	// Workflow to add to a Standard app. Ignored for Consumption.
	WorkflowName string
	Definition   json.RawMessage
	// Required to create a Consumption app.
	Location string
	// Stateful or Stateless, Standard only.
	Kind string
}

// CreateWorkflow adds a workflow to an existing Standard app, or creates a Consumption app named ref.Name when no app
// of that name exists and a location is given.
func (m *Manager) CreateWorkflow(ctx context.Context, ref AppRef, options CreateWorkflowOptions) (json.RawMessage, error) {
	if len(options.Definition) == 0 {
		return nil, &InvalidParameterError{Parameter: "definition", Reason: "must not be empty"}
	}

	app, err := m.resolver.Resolve(ctx, ref)

	var notFound *ResourceNotFoundError
	if errors.As(err, &notFound) {
		if options.Location == "" {
			return nil, &InvalidParameterError{
				Parameter: "location",
				Reason:    fmt.Sprintf("logic app '%s' does not exist; a location is required to create it", ref.Name),
			}
		}

		return m.putConsumptionWorkflow(ctx, ref, &azapi.LogicWorkflow{
			Location: options.Location,
			Properties: azapi.LogicWorkflowProperties{
				State:      consumptionCreateState,
				Definition: options.Definition,
			},
		})
	}
	if err != nil {
		return nil, err
	}

	switch app := app.(type) {
	case ConsumptionApp:
		return nil, &InvalidParameterError{
			Parameter: "logicAppName",
			Reason:    fmt.Sprintf("Consumption logic app '%s' already exists; use update_workflow", ref.Name),
		}
	case StandardApp:
		return m.putStandardWorkflow(ctx, app, options.WorkflowName, options.Definition, options.Kind)
	default:
		return nil, fmt.Errorf("unsupported logic app backend '%s'", app.Kind())
	}
}

// UpdateWorkflow replaces the definition of an existing workflow. Other properties of a Consumption app are kept.
func (m *Manager) UpdateWorkflow(
	ctx context.Context,
	ref AppRef,
	workflowName string,
	definition json.RawMessage,
	kind string,
) (json.RawMessage, error) {
	if len(definition) == 0 {
		return nil, &InvalidParameterError{Parameter: "definition", Reason: "must not be empty"}
	}

	app, err := m.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	switch app := app.(type) {
	case ConsumptionApp:
		existing, err := m.azure.GetLogicWorkflow(ctx, ref.SubscriptionId, ref.ResourceGroup, ref.Name)
		if err != nil {
			return nil, err
		}

		return m.putConsumptionWorkflow(ctx, ref, &azapi.LogicWorkflow{
			Location: existing.Location,
			Tags:     existing.Tags,
			Properties: azapi.LogicWorkflowProperties{
				State:      existing.Properties.State,
				Definition: definition,
				Parameters: existing.Properties.Parameters,
			},
		})
	case StandardApp:
		return m.putStandardWorkflow(ctx, app, workflowName, definition, kind)
	default:
		return nil, fmt.Errorf("unsupported logic app backend '%s'", app.Kind())
	}
}

// DeleteWorkflow deletes a Consumption app, or one workflow folder of a Standard app.
func (m *Manager) DeleteWorkflow(ctx context.Context, ref AppRef, workflowName string) error {
	app, err := m.resolver.Resolve(ctx, ref)
	if err != nil {
		return err
	}

	switch app := app.(type) {
	case ConsumptionApp:
		if err := m.azure.DeleteLogicWorkflow(ctx, ref.SubscriptionId, ref.ResourceGroup, ref.Name); err != nil {
			return err
		}

		m.cache.Clear(ref.SubscriptionId, ref.ResourceGroup, ref.Name)
		return nil
	case StandardApp:
		if workflowName == "" {
			return workflowNameRequired()
		}

		_, err := m.runtimeRequest(ctx, app, azapi.VfsPath(workflowName)+"/", &azapi.RequestOptions{
			Method:  http.MethodDelete,
			Query:   url.Values{"recursive": []string{"true"}},
			Headers: map[string]string{"If-Match": "*"},
		})
		if err != nil {
			return fmt.Errorf("deleting workflow '%s': %w", workflowName, err)
		}

		return nil
	default:
		return fmt.Errorf("unsupported logic app backend '%s'", app.Kind())
	}
}

// SetWorkflowEnabled enables or disables one workflow. For Consumption apps the app itself is toggled.
func (m *Manager) SetWorkflowEnabled(ctx context.Context, ref AppRef, workflowName string, enabled bool) error {
	app, err := m.resolver.Resolve(ctx, ref)
	if err != nil {
		return err
	}

	ops := &workflowOperations{manager: m}

	switch app := app.(type) {
	case ConsumptionApp:
		if enabled {
			return ops.EnableApp(ctx, app)
		}
		return ops.DisableApp(ctx, app)
	case StandardApp:
		if workflowName == "" {
			return workflowNameRequired()
		}

		if enabled {
			return ops.EnableWorkflow(ctx, app, workflowName)
		}
		return ops.DisableWorkflow(ctx, app, workflowName)
	default:
		return fmt.Errorf("unsupported logic app backend '%s'", app.Kind())
	}
}

// GetConnectionsJson returns the connections.json file of a Standard app.
func (m *Manager) GetConnectionsJson(ctx context.Context, ref AppRef) (json.RawMessage, error) {
	app, err := m.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	standard, ok := app.(StandardApp)
	if !ok {
		return nil, &InvalidParameterError{
			Parameter: "logicAppName",
			Reason:    fmt.Sprintf("'%s' is a Consumption logic app; connections.json only exists on Standard apps", ref.Name),
		}
	}

	body, err := m.runtimeRequest(ctx, standard, azapi.VfsPath(connectionsFileName), nil)
	if err != nil {
		if IsNotFound(err) {
			return json.RawMessage(`{}`), nil
		}

		return nil, fmt.Errorf("reading %s: %w", connectionsFileName, err)
	}

	return body, nil
}

func (m *Manager) putConsumptionWorkflow(
	ctx context.Context,
	ref AppRef,
	workflow *azapi.LogicWorkflow,
) (json.RawMessage, error) {
	saved, err := m.azure.PutLogicWorkflow(ctx, ref.SubscriptionId, ref.ResourceGroup, ref.Name, workflow)
	if err != nil {
		return nil, err
	}

	m.resolver.Remember(ref, ConsumptionBackend)

	return json.Marshal(WorkflowSummary{
		Name:        saved.Name,
		State:       saved.Properties.State,
		CreatedTime: saved.Properties.CreatedTime,
		ChangedTime: saved.Properties.ChangedTime,
	})
}

func (m *Manager) putStandardWorkflow(
	ctx context.Context,
	app StandardApp,
	workflowName string,
	definition json.RawMessage,
	kind string,
) (json.RawMessage, error) {
	if workflowName == "" {
		return nil, workflowNameRequired()
	}

	if kind == "" {
		kind = defaultStandardKind
	}

	_, err := m.runtimeRequest(ctx, app, azapi.VfsPath(workflowName, workflowFileName), &azapi.RequestOptions{
		Method:  http.MethodPut,
		Headers: map[string]string{"If-Match": "*"},
		Body: map[string]any{
			"definition": definition,
			"kind":       kind,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("writing %s of workflow '%s': %w", workflowFileName, workflowName, err)
	}

	return json.Marshal(WorkflowSummary{Name: workflowName, Kind: kind})
}

// workflowOperations are the single-item operations behind the batch tools.
type workflowOperations struct {
	manager *Manager
}

func (o *workflowOperations) CancelRun(ctx context.Context, ref AppRef, workflowName string, runId string) error {
	return o.manager.CancelRun(ctx, ref, workflowName, runId)
}

func (o *workflowOperations) EnableWorkflow(ctx context.Context, app StandardApp, workflowName string) error {
	return o.manager.azure.SetWorkflowFlowState(
		ctx, app.SubscriptionId, app.ResourceGroup, app.Name, workflowName, azapi.FlowStateEnabled)
}

func (o *workflowOperations) DisableWorkflow(ctx context.Context, app StandardApp, workflowName string) error {
	return o.manager.azure.SetWorkflowFlowState(
		ctx, app.SubscriptionId, app.ResourceGroup, app.Name, workflowName, azapi.FlowStateDisabled)
}

func (o *workflowOperations) EnableApp(ctx context.Context, app ConsumptionApp) error {
	return o.manager.azure.SetLogicWorkflowEnabled(ctx, app.SubscriptionId, app.ResourceGroup, app.Name, true)
}

func (o *workflowOperations) DisableApp(ctx context.Context, app ConsumptionApp) error {
	return o.manager.azure.SetLogicWorkflowEnabled(ctx, app.SubscriptionId, app.ResourceGroup, app.Name, false)
}
