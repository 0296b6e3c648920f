package parallel

import (
	"runtime"
	"sync"
)

// Parallelize splits items into contiguous chunks and calls fn(start, end)
// for each chunk on its own goroutine. nJobs <= 0 uses every CPU core.
// It returns once every chunk has finished.
func Parallelize(items, nJobs int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	numWorkers := nJobs
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > items {
		numWorkers = items
	}
	if numWorkers == 1 {
		fn(0, items)
		return
	}

	// ceiling division
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for start := 0; start < items; start += chunkSize {
		end := start + chunkSize
		if end > items {
			end = items
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially when items <= threshold.
func ParallelizeWithThreshold(items, threshold, nJobs int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, nJobs, fn)
}
