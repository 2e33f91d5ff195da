package calc

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/gonum/matrix/mat64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAlignment_SeedWithTimepointsWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	seed := mat64.NewDense(4, 2, []float64{1, 0, 1, 0, 2, 0, 2, 0})
	require.NoError(t, CheckAlignment(scenarioFunc(), seed, nil, logger))

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "seed_columns=2")
}

func TestCheckAlignment_Quiet(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	require.NoError(t, CheckAlignment(scenarioFunc(), column(1, 1, 2, 2), column(1, 1, 1, 1), logger))
	assert.Empty(t, buf.String())
}

func TestCheckAlignment_ReportsBothShapes(t *testing.T) {
	err := CheckAlignment(scenarioFunc(), column(1, 2), nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
	assert.Contains(t, err.Error(), "func is 4 by 3")
	assert.Contains(t, err.Error(), "seed is 2 by 1")
}

func TestCheckAlignment_MissingInput(t *testing.T) {
	err := CheckAlignment(nil, column(1), nil, nil)
	assert.True(t, errors.Is(err, ErrEmptyInput))
}
