package calc

import (
	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

// acc adds inputMat rows listed in samples into dst
func acc(inputMat *mat64.Dense, samples []int, dst []float64) {
	for _, i := range samples {
		floats.Add(dst, inputMat.RawRowView(i))
	}
}

// accWeighted adds inputMat rows listed in samples into dst, each scaled by its weight
func accWeighted(inputMat *mat64.Dense, samples []int, weights []float64, dst []float64) {
	for k, i := range samples {
		floats.AddScaled(dst, weights[k], inputMat.RawRowView(i))
	}
}

// div divides every element of dst by d
func div(dst []float64, d float64) {
	for t := range dst {
		dst[t] = dst[t] / d
	}
}
