package calc

import (
	"fmt"

	"github.com/gonum/matrix/mat64"
)

// MaskIndices returns the samples where the mask is > 0
func MaskIndices(mask *mat64.Dense) []int {
	rows, _ := mask.Dims()

	indices := make([]int, 0, rows)
	for i := 0; i < rows; i++ {
		if mask.At(i, 0) > 0 {
			indices = append(indices, i)
		}
	}

	return indices
}

// ReconcileMask intersects the valid samples with the samples inside mask.
// With a nil mask, valid is returned unchanged.
//
// When labels is non-nil, every label must keep at least one sample inside
// the mask (seed x binary mask, before the degenerate-signal filter);
// otherwise ErrRegionFullyMasked is returned naming target. This is the
// coarse check; MeanTimeSeries repeats the test per region on the final set.
func ReconcileMask(valid []int, seed *mat64.Dense, mask *mat64.Dense, labels []float64, target string) ([]int, error) {
	if mask == nil {
		return valid, nil
	}

	maskIdx := MaskIndices(mask)

	if labels != nil {
		if lost := labelsOutside(seed, maskIdx, labels); len(lost) > 0 {
			return nil, fmt.Errorf("%w: at least 1 ROI completely outside mask for %s (labels %v)",
				ErrRegionFullyMasked, target, lost)
		}
	}

	return intersect(valid, maskIdx), nil
}

// labelsOutside returns the labels with no sample in maskIdx
func labelsOutside(seed *mat64.Dense, maskIdx []int, labels []float64) []float64 {
	kept := make(map[float64]bool, len(labels))
	for _, i := range maskIdx {
		kept[seed.At(i, 0)] = true
	}

	var lost []float64
	for _, label := range labels {
		if !kept[label] {
			lost = append(lost, label)
		}
	}

	return lost
}
