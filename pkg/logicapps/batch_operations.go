// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logicapps

import (
	"context"
	"fmt"
	"log"
)

// DefaultBatchConcurrency is the number of items a bulk operation runs at once unless told otherwise.
const DefaultBatchConcurrency = 5

// AppResolver resolves the backend of an app.
type AppResolver interface {
	Resolve(ctx context.Context, ref AppRef) (ResolvedApp, error)
}

// WorkflowOperations are the single-item operations composed by BatchOperations.
type WorkflowOperations interface {
	CancelRun(ctx context.Context, ref AppRef, workflowName string, runId string) error
	EnableWorkflow(ctx context.Context, app StandardApp, workflowName string) error
	DisableWorkflow(ctx context.Context, app StandardApp, workflowName string) error
	EnableApp(ctx context.Context, app ConsumptionApp) error
	DisableApp(ctx context.Context, app ConsumptionApp) error
}

// BatchOperations runs bulk cancel, enable and disable operations with bounded concurrency. Individual item failures
// are reported in the BatchResult; only a failure to resolve the app's backend is returned as an error.
type BatchOperations struct {
	resolver    AppResolver
	ops         WorkflowOperations
	concurrency int
}

func NewBatchOperations(resolver AppResolver, ops WorkflowOperations, concurrency int) *BatchOperations {
	if concurrency < 1 {
		concurrency = DefaultBatchConcurrency
	}

	return &BatchOperations{
		resolver:    resolver,
		ops:         ops,
		concurrency: concurrency,
	}
}

// CancelRuns cancels each run. A concurrency below 1 uses the configured default.
func (b *BatchOperations) CancelRuns(
	ctx context.Context,
	ref AppRef,
	runIds []string,
	workflowName string,
	concurrency int,
) (*BatchResult, error) {
	if len(runIds) == 0 {
		return newBatchResult([]BatchItemResult{}), nil
	}

	return b.run(ctx, runIds, concurrency, func(ctx context.Context, runId string) error {
		return b.ops.CancelRun(ctx, ref, workflowName, runId)
	}), nil
}

// BatchEnableWorkflows enables the named workflows of a Standard app, or the app itself when it is a Consumption
// workflow. A concurrency below 1 uses the configured default.
func (b *BatchOperations) BatchEnableWorkflows(
	ctx context.Context,
	ref AppRef,
	workflowNames []string,
	concurrency int,
) (*BatchResult, error) {
	return b.setWorkflowStates(ctx, ref, workflowNames, concurrency, true)
}

// BatchDisableWorkflows disables the named workflows of a Standard app, or the app itself when it is a Consumption
// workflow.
func (b *BatchOperations) BatchDisableWorkflows(
	ctx context.Context,
	ref AppRef,
	workflowNames []string,
	concurrency int,
) (*BatchResult, error) {
	return b.setWorkflowStates(ctx, ref, workflowNames, concurrency, false)
}

func (b *BatchOperations) setWorkflowStates(
	ctx context.Context,
	ref AppRef,
	workflowNames []string,
	concurrency int,
	enable bool,
) (*BatchResult, error) {
	if len(workflowNames) == 0 {
		return newBatchResult([]BatchItemResult{}), nil
	}

	app, err := b.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	switch app := app.(type) {
	case ConsumptionApp:
		// A Consumption app is a single workflow; the names do not address anything narrower than the app.
		var opErr error
		if enable {
			opErr = b.ops.EnableApp(ctx, app)
		} else {
			opErr = b.ops.DisableApp(ctx, app)
		}

		return newBatchResult([]BatchItemResult{itemResult(app.Name, opErr)}), nil
	case StandardApp:
		return b.run(ctx, workflowNames, concurrency, func(ctx context.Context, workflowName string) error {
			if enable {
				return b.ops.EnableWorkflow(ctx, app, workflowName)
			}

			return b.ops.DisableWorkflow(ctx, app, workflowName)
		}), nil
	default:
		return nil, fmt.Errorf("unsupported logic app backend '%s'", app.Kind())
	}
}

// run applies op to every id. op failures become failed items; ids never started because ctx was cancelled are
// reported as failed too, so every id has exactly one result.
func (b *BatchOperations) run(
	ctx context.Context,
	ids []string,
	concurrency int,
	op func(ctx context.Context, id string) error,
) *BatchResult {
	if concurrency < 1 {
		concurrency = b.concurrency
	}

	indexes := make([]int, len(ids))
	for i := range ids {
		indexes[i] = i
	}

	started := make([]bool, len(ids))
	results, err := RunBounded(ctx, indexes, concurrency, func(ctx context.Context, i int) (BatchItemResult, error) {
		started[i] = true
		return itemResult(ids[i], op(ctx, ids[i])), nil
	})

	if err != nil {
		log.Printf("batch stopped before all items started: %v", err)
		for i := range results {
			if !started[i] {
				results[i] = BatchItemResult{Id: ids[i], Error: fmt.Sprintf("not started: %v", err)}
			}
		}
	}

	return newBatchResult(results)
}

func itemResult(id string, err error) BatchItemResult {
	if err != nil {
		return BatchItemResult{Id: id, Error: err.Error()}
	}

	return BatchItemResult{Id: id, Success: true}
}
