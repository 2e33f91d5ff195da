package calc

import (
	"fmt"
	"log/slog"

	"github.com/gonum/matrix/mat64"
)

// CheckAlignment checks that functional data, seed and the optional mask
// share the same number of samples. A nil mask is skipped.
func CheckAlignment(funcMat *mat64.Dense, seed *mat64.Dense, mask *mat64.Dense, logger *slog.Logger) error {
	if funcMat == nil || seed == nil {
		return fmt.Errorf("%w: functional data and seed are required", ErrEmptyInput)
	}

	funcRows, funcCols := funcMat.Dims()
	seedRows, seedCols := seed.Dims()

	if funcRows == 0 || funcCols == 0 {
		return fmt.Errorf("%w: functional data is %d by %d", ErrEmptyInput, funcRows, funcCols)
	}

	if funcRows != seedRows {
		return &ShapeError{
			First: "func", FirstRows: funcRows, FirstCols: funcCols,
			Second: "seed", SecondRows: seedRows, SecondCols: seedCols,
		}
	}

	if mask != nil {
		maskRows, maskCols := mask.Dims()
		if seedRows != maskRows {
			return &ShapeError{
				First: "seed", FirstRows: seedRows, FirstCols: seedCols,
				Second: "mask", SecondRows: maskRows, SecondCols: maskCols,
			}
		}
	}

	// only column 0 of the seed is read from here on
	if seedCols != 1 {
		orDefault(logger).Warn("seed has more than one timepoint, using the first",
			slog.Int("seed_columns", seedCols))
	}

	return nil
}
