package localreg

import "sync"

// runBruteParallel evaluates every query/reference pair exactly using
// multiple goroutines. Each worker handles a contiguous range of queries;
// per-query result state is disjoint, so no synchronization is needed for
// writes. Falls back to single-threaded runBrute if numWorkers <= 1.
//
// The result is bitwise identical to runBrute: the accumulation order within
// each query is unchanged.
func runBruteParallel(g *Global, res *Result, numWorkers int) {
	n := g.QueryTable().NumPoints()
	if numWorkers <= 1 || n <= 1 {
		runBrute(g, res)
		return
	}

	var wg sync.WaitGroup
	queriesPerWorker := (n + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		start := w * queriesPerWorker
		end := start + queriesPerWorker
		if end > n {
			end = n
		}
		if start >= n {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			runBruteRange(g, res, start, end)
		}(start, end)
	}

	wg.Wait()
}
