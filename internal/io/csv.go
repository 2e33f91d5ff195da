package io

import (
	"encoding/csv"
	"fmt"
	stdio "io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gonum/matrix/mat64"
)

// Mat64toCSV saves Mat64 as a csv file, one matrix row per line
func Mat64toCSV(path string, matrix *mat64.Dense) error {
	f, err := create(path)
	if err != nil {
		return fmt.Errorf("[Mat64toCSV] failed to open: %w", err)
	}
	defer f.Close()

	if err := WriteMat64CSV(f, matrix); err != nil {
		return fmt.Errorf("[Mat64toCSV] %s: %w", path, err)
	}

	return f.Close()
}

// WriteMat64CSV writes matrix rows as comma separated lines
func WriteMat64CSV(w stdio.Writer, matrix *mat64.Dense) error {
	rows, cols := matrix.Dims()

	csvWriter := csv.NewWriter(w)
	record := make([]string, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			record[j] = formatFloat(matrix.At(i, j))
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// LabelsToCSV writes one label per line
func LabelsToCSV(path string, labels []float64) error {
	f, err := create(path)
	if err != nil {
		return fmt.Errorf("[LabelsToCSV] failed to open: %w", err)
	}
	defer f.Close()

	for _, label := range labels {
		if _, err := fmt.Fprintln(f, formatFloat(label)); err != nil {
			return fmt.Errorf("[LabelsToCSV] %s: %w", path, err)
		}
	}

	return f.Close()
}

// CSVtoMat64 converts csv file to mat64
func CSVtoMat64(path string) (*mat64.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("[CSVtoMat64] failed to open file: %w", err)
	}
	defer f.Close()

	matrix, err := ReadMat64CSV(f)
	if err != nil {
		return nil, fmt.Errorf("[CSVtoMat64] %s: %w", path, err)
	}
	return matrix, nil
}

// ReadMat64CSV parses comma separated floats, one matrix row per line
func ReadMat64CSV(r stdio.Reader) (*mat64.Dense, error) {
	csvReader := csv.NewReader(r)
	csvReader.TrimLeadingSpace = true
	csvReader.Comment = '#'

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, fmt.Errorf("no data")
	}

	rows, cols := len(records), len(records[0])
	matrix := mat64.NewDense(rows, cols, nil)
	for i, record := range records {
		for j, field := range record {
			value, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d, column %d: %w", i+1, j+1, err)
			}
			matrix.Set(i, j, value)
		}
	}

	return matrix, nil
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

func create(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}
