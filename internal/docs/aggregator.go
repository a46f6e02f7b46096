package docs

import (
	"context"
	"sync"

	"github.com/mdsect/mdsect/internal/domain"
)

// DefaultParallelism bounds concurrent per-file indexing.
const DefaultParallelism = 4

// Aggregator runs the file indexer across an ordered set of inputs and
// concatenates the results. Total ordering is always input order, then
// per-file document order, regardless of how many workers run.
type Aggregator struct {
	parallelism int
}

// NewAggregator creates an aggregator with the given worker bound.
// Values below one fall back to sequential processing.
func NewAggregator(parallelism int) *Aggregator {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Aggregator{parallelism: parallelism}
}

// Aggregate indexes already-loaded sources in order. Sectionizing never
// fails, so the only error source is context cancellation.
func (a *Aggregator) Aggregate(ctx context.Context, sources []Source) (domain.Index, error) {
	return a.run(ctx, len(sources), func(i int) ([]domain.FileSectionRecord, error) {
		return IndexSource(sources[i]), nil
	})
}

// AggregatePaths loads and indexes the given files in order. The policy is
// fail-fast: the first failing file (in input order) aborts the run and no
// partial index is returned.
func (a *Aggregator) AggregatePaths(ctx context.Context, paths []string) (domain.Index, error) {
	return a.run(ctx, len(paths), func(i int) ([]domain.FileSectionRecord, error) {
		return IndexPath(paths[i])
	})
}

// run executes one task per input position. Results are collected keyed by
// position and concatenated in order afterwards, so parallel completion
// order never leaks into the output.
func (a *Aggregator) run(ctx context.Context, n int, task func(int) ([]domain.FileSectionRecord, error)) (domain.Index, error) {
	if n == 0 {
		return domain.Index{}, nil
	}

	results := make([][]domain.FileSectionRecord, n)
	errs := make([]error, n)

	if a.parallelism == 1 {
		for i := range n {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			records, err := task(i)
			if err != nil {
				return nil, err
			}
			results[i] = records
		}
	} else {
		sem := make(chan struct{}, a.parallelism)
		var wg sync.WaitGroup

		for i := range n {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				sem <- struct{}{}        // Acquire
				defer func() { <-sem }() // Release

				if err := ctx.Err(); err != nil {
					errs[i] = err
					return
				}
				results[i], errs[i] = task(i)
			}(i)
		}
		wg.Wait()

		// Surface the first failure in input order.
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}

	var index domain.Index
	for _, records := range results {
		index = append(index, records...)
	}
	if index == nil {
		index = domain.Index{}
	}
	return index, nil
}
