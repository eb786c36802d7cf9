// Package workerpool provides simple concurrent processing utilities.
package workerpool

import (
	"context"
	"sync"
)

// Collect runs a bounded worker pool over the provided items, invoking
// process for each and gathering one result per item. Result order bears
// no relation to item order. Individual results that represent failures
// never stop the pool; only context cancellation cuts the queue short,
// in which case unprocessed items produce no result.
func Collect[T, R any](ctx context.Context, workerCount int, items []T, process func(context.Context, T) R) []R {
	if len(items) == 0 {
		return nil
	}
	if workerCount <= 0 {
		workerCount = 1
	}
	if workerCount > len(items) {
		workerCount = len(items)
	}

	tasks := make(chan T)
	results := make(chan R, len(items))

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range tasks {
				results <- process(ctx, item)
			}
		}()
	}

	go func() {
		defer close(tasks)
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case tasks <- item:
			}
		}
	}()

	wg.Wait()
	close(results)

	out := make([]R, 0, len(items))
	for r := range results {
		out = append(out, r)
	}
	return out
}
