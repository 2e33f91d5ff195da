package calc

import (
	"fmt"
	"math"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

// MeanTimeSeries returns one row per label: the per-timepoint mean of the
// samples that carry the label and are in valid. A label without such a
// sample fails with ErrRegionFullyMasked.
func MeanTimeSeries(funcMat *mat64.Dense, seed *mat64.Dense, valid []int, labels []float64) (*mat64.Dense, error) {
	_, cols := funcMat.Dims()
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: seed has no nonzero labels", ErrEmptyInput)
	}

	outputMat := mat64.NewDense(len(labels), cols, nil)

	for r, label := range labels {
		var members []int
		for _, i := range valid {
			if seed.At(i, 0) == label {
				members = append(members, i)
			}
		}

		if len(members) == 0 {
			return nil, fmt.Errorf("%w: ROI %g has no valid samples", ErrRegionFullyMasked, label)
		}

		row := outputMat.RawRowView(r)
		acc(funcMat, members, row)
		div(row, float64(len(members)))
	}

	return outputMat, nil
}

// WeightedTimeSeries returns a single row: the average of the valid samples
// weighted by their seed values, sum(x_i * w_i) / sum(w_i) per timepoint.
// Negative or NaN weights, or a weight sum <= 0, fail with ErrInvalidWeights.
func WeightedTimeSeries(funcMat *mat64.Dense, seed *mat64.Dense, valid []int) (*mat64.Dense, error) {
	_, cols := funcMat.Dims()

	weights := make([]float64, len(valid))
	for k, i := range valid {
		w := seed.At(i, 0)
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight %g at sample %d", ErrInvalidWeights, w, i)
		}
		weights[k] = w
	}

	sum := floats.Sum(weights)
	if !(sum > 0) {
		return nil, fmt.Errorf("%w: weights sum to %g over %d valid samples", ErrInvalidWeights, sum, len(valid))
	}

	outputMat := mat64.NewDense(1, cols, nil)
	row := outputMat.RawRowView(0)
	accWeighted(funcMat, valid, weights, row)
	div(row, sum)

	return outputMat, nil
}
