package loader

import (
	"context"
	"fmt"

	"github.com/KyungWonPark/meants/internal/io"
	"github.com/KyungWonPark/meants/internal/wb"
	"github.com/gonum/matrix/mat64"
)

// scratch returns a fresh file name in the scratch directory
func (l *Loader) scratch(base string, suffix string) string {
	l.seq++
	return l.Scratch.File(fmt.Sprintf("%02d_%s%s", l.seq, base, suffix))
}

func (l *Loader) readNifti(path string) (*mat64.Dense, error) {
	if l.ReadNifti != nil {
		return l.ReadNifti(path)
	}
	return io.NiftiToMat64(path)
}

// readCifti reads every brainordinate of a cifti file
func (l *Loader) readCifti(ctx context.Context, path string) (*mat64.Dense, error) {
	_, base := DetermineFileType(path)
	out := l.scratch(base, ".nii")
	if err := wb.CiftiToNifti(ctx, l.Runner, path, out); err != nil {
		return nil, err
	}
	return l.readNifti(out)
}

// readCiftiSurfaces reads the left then right cortex vertices of a cifti file
func (l *Loader) readCiftiSurfaces(ctx context.Context, path string) (*mat64.Dense, error) {
	left, err := l.readHemisphere(ctx, path, "CORTEX_LEFT")
	if err != nil {
		return nil, err
	}
	right, err := l.readHemisphere(ctx, path, "CORTEX_RIGHT")
	if err != nil {
		return nil, err
	}
	return stack(left, right)
}

// readHemisphere reads the vertices of one cortical structure of a cifti file
func (l *Loader) readHemisphere(ctx context.Context, path string, structure string) (*mat64.Dense, error) {
	_, base := DetermineFileType(path)
	metric := l.scratch(base+"_"+structure, ".func.gii")
	if err := wb.SeparateMetric(ctx, l.Runner, path, structure, metric); err != nil {
		return nil, err
	}
	return l.readGifti(ctx, metric)
}

// readSubcortical reads the volume part of a cifti file
func (l *Loader) readSubcortical(ctx context.Context, path string) (*mat64.Dense, error) {
	_, base := DetermineFileType(path)
	out := l.scratch("subcort_"+base, ".nii")
	if err := wb.SeparateVolume(ctx, l.Runner, path, out); err != nil {
		return nil, err
	}
	return l.readNifti(out)
}

// readGifti reads a gifti metric
func (l *Loader) readGifti(ctx context.Context, path string) (*mat64.Dense, error) {
	_, base := DetermineFileType(path)
	out := l.scratch(base, ".nii")
	if err := wb.MetricToNifti(ctx, l.Runner, path, out); err != nil {
		return nil, err
	}
	return l.readNifti(out)
}

func readArray(path string) (*mat64.Dense, error) {
	switch t, _ := DetermineFileType(path); t {
	case Npy:
		return io.NpytoMat64(path)
	case CSV:
		return io.CSVtoMat64(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// stack places the rows of b below the rows of a
func stack(a *mat64.Dense, b *mat64.Dense) (*mat64.Dense, error) {
	_, ac := a.Dims()
	_, bc := b.Dims()
	if ac != bc {
		return nil, fmt.Errorf("loader: hemispheres have %d and %d timepoints", ac, bc)
	}

	var out mat64.Dense
	out.Stack(a, b)
	return &out, nil
}
