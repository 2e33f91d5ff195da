package calc

import (
	"math"
	"sync"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

type statistic struct {
	avg float64
	std float64
}

// getStat returns mean and population standard deviation of one time series.
// Two passes, so a constant series yields std == 0 exactly.
func getStat(series []float64) statistic {
	n := float64(len(series))
	avg := floats.Sum(series) / n

	var accSqrDev float64
	for _, value := range series {
		dev := value - avg
		accSqrDev += dev * dev
	}

	return statistic{
		avg: avg,
		std: math.Sqrt(accSqrDev / n),
	}
}

func statWorker(inputMat *mat64.Dense, stats []statistic, order <-chan int, wg *sync.WaitGroup) {
	for index := range order {
		stats[index] = getStat(inputMat.RawRowView(index))
		wg.Done()
	}
}

// intersect returns the common elements of two ascending index lists
func intersect(a []int, b []int) []int {
	out := make([]int, 0, minInt(len(a), len(b)))

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}

	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
