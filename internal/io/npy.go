package io

import (
	"fmt"

	"github.com/gonum/matrix/mat64"
	"github.com/kshedden/gonpy"
)

// Mat64toNpy writes mat64 matrix to Python numpy npy binary file
func Mat64toNpy(path string, matrix *mat64.Dense) error {
	rows, cols := matrix.Dims()

	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return fmt.Errorf("[Mat64toNpy] failed to open file: %w", err)
	}
	w.Shape = []int{rows, cols}
	w.Version = 2

	if err := w.WriteFloat64(denseData(matrix)); err != nil {
		return fmt.Errorf("[Mat64toNpy] failed to write file: %w", err)
	}

	return nil
}

// NpytoMat64 reads Python numpy npy binary file as mat64 matrix.
// A 1-D array of length n is read as n by 1.
func NpytoMat64(path string) (*mat64.Dense, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("[NpytoMat64] failed to open file: %w", err)
	}

	var rows, cols int
	switch len(r.Shape) {
	case 1:
		rows, cols = r.Shape[0], 1
	case 2:
		rows, cols = r.Shape[0], r.Shape[1]
	default:
		return nil, fmt.Errorf("[NpytoMat64] %s: unsupported shape %v", path, r.Shape)
	}
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("[NpytoMat64] %s: empty array %v", path, r.Shape)
	}

	data, err := npyFloat64(r)
	if err != nil {
		return nil, fmt.Errorf("[NpytoMat64] failed to read file: %w", err)
	}

	if r.ColumnMajor {
		return mat64.DenseCopyOf(mat64.NewDense(cols, rows, data).T()), nil
	}
	return mat64.NewDense(rows, cols, data), nil
}

// npyFloat64 returns the array data as float64 whatever the stored dtype
func npyFloat64(r *gonpy.NpyReader) ([]float64, error) {
	switch r.Dtype {
	case "f8":
		return r.GetFloat64()
	case "f4":
		v, err := r.GetFloat32()
		return widen(v, err)
	case "i8":
		v, err := r.GetInt64()
		return widen(v, err)
	case "i4":
		v, err := r.GetInt32()
		return widen(v, err)
	case "i2":
		v, err := r.GetInt16()
		return widen(v, err)
	case "i1":
		v, err := r.GetInt8()
		return widen(v, err)
	case "u1":
		v, err := r.GetUint8()
		return widen(v, err)
	}
	return nil, fmt.Errorf("unsupported dtype %q", r.Dtype)
}

type number interface {
	~float32 | ~int64 | ~int32 | ~int16 | ~int8 | ~uint8
}

func widen[T number](values []T, err error) ([]float64, error) {
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out, nil
}

// denseData returns the row-major elements of matrix without stride gaps
func denseData(matrix *mat64.Dense) []float64 {
	rows, cols := matrix.Dims()
	raw := matrix.RawMatrix()
	if raw.Stride == cols {
		return raw.Data[:rows*cols]
	}

	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, matrix.RawRowView(i)...)
	}
	return data
}
