// Package parallel fans independent index ranges out across goroutines.
//
// It is used for batch inference only: a fitted tree is read-only, so rows can
// be predicted concurrently without coordination. Tree growth stays sequential.
package parallel

import (
	"runtime"
	"sync"
)

// Workers resolves an n_jobs style setting: values <= 0 mean one worker per
// CPU, and the result never exceeds items.
func Workers(nJobs, items int) int {
	n := nJobs
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > items {
		n = items
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Parallelize splits [0, items) into contiguous chunks, one per worker, and
// calls fn(start, end) for each chunk concurrently. It returns once every
// chunk is done.
func Parallelize(items, nJobs int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := Workers(nJobs, items)
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

// ParallelizeWithThreshold runs fn sequentially when items <= threshold and
// defers to Parallelize otherwise.
func ParallelizeWithThreshold(items, threshold, nJobs int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, nJobs, fn)
}
