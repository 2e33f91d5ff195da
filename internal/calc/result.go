package calc

import (
	"fmt"

	"github.com/gonum/matrix/mat64"
)

// Result is the aggregated output of one run.
// Row i of Matrix is the time series for Labels[i]; Labels is nil in weighted mode.
type Result struct {
	Matrix   *mat64.Dense
	Labels   []float64
	Weighted bool
}

// newResult pairs the output rows with their labels
func newResult(outputMat *mat64.Dense, labels []float64, weighted bool) (*Result, error) {
	rows, _ := outputMat.Dims()

	if weighted {
		if rows != 1 {
			return nil, fmt.Errorf("calc: weighted output has %d rows", rows)
		}
		return &Result{Matrix: outputMat, Weighted: true}, nil
	}

	if rows != len(labels) {
		return nil, fmt.Errorf("calc: %d output rows for %d labels", rows, len(labels))
	}

	return &Result{Matrix: outputMat, Labels: labels}, nil
}
