package concurrency

import (
	"context"
	"sync"
)

const defaultWorkers = 4

// Map runs fn over every item with at most workers goroutines and returns
// the results and errors positionally: results[i] and errs[i] belong to
// items[i]. A cancelled context stops scheduling further items; their
// error slots carry ctx.Err().
func Map[T any, R any](
	ctx context.Context,
	items []T,
	workers int,
	fn func(ctx context.Context, item T) (R, error),
) ([]R, []error) {
	results := make([]R, len(items))
	errs := make([]error, len(items))
	if len(items) == 0 {
		return results, errs
	}

	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = fn(ctx, items[i])
			}
		}()
	}

	for i := range items {
		select {
		case <-ctx.Done():
			errs[i] = ctx.Err()
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return results, errs
}
