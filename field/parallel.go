// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package field

import (
	"runtime"
	"sync"
)

// serialLimit is the sample count below which ForEach does not start goroutines.
const serialLimit = 4096

// ForEach calls fn for every index in [0, n). The calls are spread over GOMAXPROCS
// goroutines, so fn must only write to the element at its own index.
func ForEach(n int, fn func(i int)) {
	nprocs := runtime.GOMAXPROCS(0)
	if n < serialLimit || nprocs == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for i := pp; i < n; i += nprocs {
				fn(i)
			}
		}(pp)
	}
	wg.Wait()
}

// ForEachSample calls fn for every sample of every region. Regions are visited one
// after another; the samples of a region in parallel.
func ForEachSample(regions [][]float64, fn func(region, i int)) {
	for r, values := range regions {
		ForEach(len(values), func(i int) { fn(r, i) })
	}
}
