package calc

import (
	"fmt"
	"math"
	"sort"

	"github.com/gonum/matrix/mat64"
)

// UniqueLabels returns the distinct nonzero values of the seed in ascending order.
// 0 and NaN are background.
func UniqueLabels(seed *mat64.Dense) []float64 {
	rows, _ := seed.Dims()

	seen := make(map[float64]bool)
	labels := []float64{}
	for i := 0; i < rows; i++ {
		value := seed.At(i, 0)
		if value == 0 || math.IsNaN(value) || seen[value] {
			continue
		}
		seen[value] = true
		labels = append(labels, value)
	}

	sort.Float64s(labels)
	return labels
}

// SelectRegions resolves the labels to aggregate. In SingleLabel mode the
// requested label must be one of the seed's nonzero labels.
func SelectRegions(seed *mat64.Dense, mode Mode) ([]float64, error) {
	labels := UniqueLabels(seed)

	if mode.Kind != SingleLabel {
		return labels, nil
	}

	i := sort.SearchFloat64s(labels, mode.Label)
	if i == len(labels) || labels[i] != mode.Label {
		return nil, fmt.Errorf("%w: ROI %g, not in seed map labels: %v", ErrUnknownRegionLabel, mode.Label, labels)
	}

	return []float64{mode.Label}, nil
}
