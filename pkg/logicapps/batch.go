// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logicapps

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/semaphore"
)

// RunBounded applies op to every item with at most concurrency calls in flight, starting the next item as soon as
// any running call returns. results[i] is the result for items[i] regardless of completion order.
//
// Errors are not swallowed: once an op fails no further items are started, calls already running are allowed to
// finish, and all errors are returned combined. Cancelling ctx also stops new items from starting. Slots of items
// that were never started hold the zero value of R. A concurrency below 1 is treated as 1.
func RunBounded[T any, R any](
	ctx context.Context,
	items []T,
	concurrency int,
	op func(ctx context.Context, item T) (R, error),
) ([]R, error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]R, len(items))
	sem := semaphore.NewWeighted(int64(concurrency))

	var (
		wg     sync.WaitGroup
		errMu  sync.Mutex
		runErr error
	)

	failed := func() bool {
		errMu.Lock()
		defer errMu.Unlock()
		return runErr != nil
	}

	for i, item := range items {
		if err := sem.Acquire(ctx, 1); err != nil {
			errMu.Lock()
			runErr = multierr.Append(runErr, err)
			errMu.Unlock()
			break
		}

		if failed() {
			sem.Release(1)
			break
		}

		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			defer sem.Release(1)

			result, err := op(ctx, item)
			results[i] = result
			if err != nil {
				errMu.Lock()
				runErr = multierr.Append(runErr, err)
				errMu.Unlock()
			}
		}(i, item)
	}

	wg.Wait()

	return results, runErr
}
