package pipeline

import (
	"context"
	"sync"
)

// DefaultWorkers bounds concurrent analyses when the caller does not
// say otherwise. Fetch latency dominates each call, so a small pool
// already keeps the CPU-bound stages busy.
const DefaultWorkers = 4

// AnalyzeAll classifies every reference with at most workers in flight,
// one pipeline invocation per image. Results come back in input order.
// The only shared state between invocations is the immutable category
// table, so no locking is involved. Cancelling the context stops
// feeding new work; items never started report the context error.
func (p *Pipeline) AnalyzeAll(ctx context.Context, refs []string, workers int) []Result {
	if workers < 1 {
		workers = DefaultWorkers
	}
	if workers > len(refs) {
		workers = len(refs)
	}

	results := make([]Result, len(refs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.Analyze(ctx, refs[i])
			}
		}()
	}

	fed := 0
feed:
	for i := range refs {
		select {
		case jobs <- i:
			fed++
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for i := fed; i < len(refs); i++ {
		if results[i].Ref == "" {
			results[i] = unclassifiable(refs[i], ctx.Err())
		}
	}

	return results
}
