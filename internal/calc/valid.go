package calc

import (
	"runtime"
	"sync"

	"github.com/gonum/matrix/mat64"
)

// ValidSamples returns, in ascending order, the samples whose time series
// varies (std > 0) and is not zero on average (mean != 0). Samples outside the
// acquired volume and constant samples are excluded by this even when no
// explicit mask is given.
func ValidSamples(funcMat *mat64.Dense) []int {
	rows, _ := funcMat.Dims()
	stats := make([]statistic, rows)

	{ // Get statistics for each sample time series
		numWorker := minInt(runtime.NumCPU(), rows)
		order := make(chan int, numWorker)
		var wg sync.WaitGroup

		wg.Add(rows)

		for i := 0; i < numWorker; i++ {
			go statWorker(funcMat, stats, order, &wg)
		}

		for i := 0; i < rows; i++ {
			order <- i
		}

		wg.Wait()
		close(order)
	}

	valid := make([]int, 0, rows)
	for i, stat := range stats {
		if stat.std > 0 && stat.avg != 0 {
			valid = append(valid, i)
		}
	}

	return valid
}
