package calc

import (
	"errors"
	"fmt"
)

// Failures of the aggregation pipeline, matched with errors.Is
var (
	ErrShapeMismatch      = errors.New("calc: sample count mismatch")
	ErrUnknownRegionLabel = errors.New("calc: region label not in seed map")
	ErrRegionFullyMasked  = errors.New("calc: region has no usable samples")
	ErrInvalidWeights     = errors.New("calc: invalid weights")
	ErrEmptyInput         = errors.New("calc: empty input")
)

// ShapeError reports two inputs that disagree on the sample axis
type ShapeError struct {
	First, Second          string
	FirstRows, FirstCols   int
	SecondRows, SecondCols int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%v: %s is %d by %d but %s is %d by %d",
		ErrShapeMismatch, e.First, e.FirstRows, e.FirstCols, e.Second, e.SecondRows, e.SecondCols)
}

// Unwrap lets errors.Is match ErrShapeMismatch
func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}
