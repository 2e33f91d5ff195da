// Package loader turns the func, seed and mask files of a run into flat
// sample by timepoint matrices that share one sample axis.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KyungWonPark/meants/internal/wb"
	"github.com/gonum/matrix/mat64"
)

var (
	ErrUnsupportedFormat  = errors.New("loader: unsupported file format")
	ErrFormatMismatch     = errors.New("loader: file formats do not match")
	ErrHemisphereRequired = errors.New("loader: hemisphere required")
)

// Space is the geometry the flat sample axis was taken from
type Space int

const (
	// Volumetric samples are voxels of a NIfTI volume
	Volumetric Space = iota
	// Surface samples are cortical vertices
	Surface
	// MixedSurfaceVolume samples are the brainordinates of a full cifti file
	MixedSurfaceVolume
	// Array samples are rows of an npy or csv array
	Array
)

func (s Space) String() string {
	switch s {
	case Volumetric:
		return "volumetric"
	case Surface:
		return "surface"
	case MixedSurfaceVolume:
		return "mixed_surface_volume"
	case Array:
		return "array"
	}
	return "unknown"
}

// Request names the input files of a run. Mask and Hemi are optional.
type Request struct {
	Func string
	Seed string
	Mask string
	// Hemi is L or R, needed when a gifti seed is paired with cifti data
	Hemi string
}

// Inputs are the loaded matrices; Mask is nil when no mask was requested
type Inputs struct {
	Func  *mat64.Dense
	Seed  *mat64.Dense
	Mask  *mat64.Dense
	Space Space
}

// Loader reads inputs, converting through wb_command into Scratch when needed
type Loader struct {
	Runner  wb.Runner
	Scratch *wb.TempDir
	Logger  *slog.Logger

	// ReadNifti reads a .nii or .nii.gz file, io.NiftiToMat64 when nil
	ReadNifti func(path string) (*mat64.Dense, error)

	seq int
}

// Load reads the files in req according to the seed's format
func (l *Loader) Load(ctx context.Context, req Request) (*Inputs, error) {
	if l.Logger == nil {
		l.Logger = slog.Default()
	}

	seedType, _ := DetermineFileType(req.Seed)
	funcType, _ := DetermineFileType(req.Func)
	maskType := Unknown
	if req.Mask != "" {
		maskType, _ = DetermineFileType(req.Mask)
	}
	l.Logger.Debug("determined file types",
		slog.String("func_type", funcType.String()),
		slog.String("seed_type", seedType.String()),
		slog.String("mask_type", maskType.String()))

	seed := req.Seed
	if strings.HasSuffix(seed, ".dlabel.nii") {
		rois := l.scratch("seedmap", ".dscalar.nii")
		combined := l.scratch("seedmapcombined", ".dscalar.nii")
		if err := wb.LabelsToCombinedScalar(ctx, l.Runner, seed, rois, combined); err != nil {
			return nil, err
		}
		seed = combined
	}

	switch seedType {
	case Cifti:
		return l.loadCifti(ctx, req, seed, funcType, maskType)
	case Gifti:
		return l.loadGifti(ctx, req, seed, funcType, maskType)
	case Nifti:
		return l.loadNifti(ctx, req, seed, funcType, maskType)
	case Npy, CSV:
		return l.loadArray(req, funcType, maskType)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, req.Seed)
}

func (l *Loader) loadCifti(ctx context.Context, req Request, seed string, funcType, maskType FileType) (*Inputs, error) {
	if funcType != Cifti {
		return nil, fmt.Errorf("%w: if <seed> is in cifti, func file needs to match", ErrFormatMismatch)
	}
	if req.Mask != "" && maskType != Cifti {
		return nil, fmt.Errorf("%w: if <seed> is in cifti, mask file needs to match", ErrFormatMismatch)
	}

	seedInfo, err := wb.FileInfo(ctx, l.Runner, seed)
	if err != nil {
		return nil, err
	}
	funcInfo, err := wb.FileInfo(ctx, l.Runner, req.Func)
	if err != nil {
		return nil, err
	}

	in := &Inputs{Space: MixedSurfaceVolume}
	read := l.readCifti
	if !(seedInfo.MapsToVolume && funcInfo.MapsToVolume) {
		in.Space = Surface
		read = l.readCiftiSurfaces
	}

	if in.Seed, err = read(ctx, seed); err != nil {
		return nil, err
	}
	if in.Func, err = read(ctx, req.Func); err != nil {
		return nil, err
	}
	if req.Mask != "" {
		if in.Mask, err = read(ctx, req.Mask); err != nil {
			return nil, err
		}
	}

	return in, nil
}

func (l *Loader) loadGifti(ctx context.Context, req Request, seed string, funcType, maskType FileType) (*Inputs, error) {
	in := &Inputs{Space: Surface}

	var err error
	if in.Seed, err = l.readGifti(ctx, seed); err != nil {
		return nil, err
	}

	switch funcType {
	case Gifti:
		if in.Func, err = l.readGifti(ctx, req.Func); err != nil {
			return nil, err
		}
		if req.Mask != "" {
			if maskType != Gifti {
				return nil, fmt.Errorf("%w: if <seed> is in gifti, mask file needs to match", ErrFormatMismatch)
			}
			if in.Mask, err = l.readGifti(ctx, req.Mask); err != nil {
				return nil, err
			}
		}

	case Cifti:
		structure, err := hemisphere(req.Hemi)
		if err != nil {
			return nil, err
		}
		if in.Func, err = l.readHemisphere(ctx, req.Func, structure); err != nil {
			return nil, err
		}
		switch {
		case req.Mask == "":
		case maskType == Cifti:
			in.Mask, err = l.readHemisphere(ctx, req.Mask, structure)
		case maskType == Gifti:
			in.Mask, err = l.readGifti(ctx, req.Mask)
		default:
			err = fmt.Errorf("%w: if <seed> is in gifti, mask must be gifti or cifti", ErrFormatMismatch)
		}
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: if <seed> is in gifti, <func> must be gifti or cifti", ErrFormatMismatch)
	}

	return in, nil
}

func (l *Loader) loadNifti(ctx context.Context, req Request, seed string, funcType, maskType FileType) (*Inputs, error) {
	in := &Inputs{Space: Volumetric}

	var err error
	if in.Seed, err = l.readNifti(seed); err != nil {
		return nil, err
	}

	volume := func(path string, t FileType, what string) (*mat64.Dense, error) {
		switch t {
		case Nifti:
			return l.readNifti(path)
		case Cifti:
			return l.readSubcortical(ctx, path)
		}
		return nil, fmt.Errorf("%w: if <seed> is in nifti, %s file needs to match", ErrFormatMismatch, what)
	}

	if in.Func, err = volume(req.Func, funcType, "func"); err != nil {
		return nil, err
	}
	if req.Mask != "" {
		if in.Mask, err = volume(req.Mask, maskType, "mask"); err != nil {
			return nil, err
		}
	}

	return in, nil
}

func (l *Loader) loadArray(req Request, funcType, maskType FileType) (*Inputs, error) {
	in := &Inputs{Space: Array}

	var err error
	if in.Seed, err = readArray(req.Seed); err != nil {
		return nil, err
	}
	if funcType != Npy && funcType != CSV {
		return nil, fmt.Errorf("%w: if <seed> is an array, func file needs to be npy or csv", ErrFormatMismatch)
	}
	if in.Func, err = readArray(req.Func); err != nil {
		return nil, err
	}
	if req.Mask != "" {
		if maskType != Npy && maskType != CSV {
			return nil, fmt.Errorf("%w: if <seed> is an array, mask file needs to be npy or csv", ErrFormatMismatch)
		}
		if in.Mask, err = readArray(req.Mask); err != nil {
			return nil, err
		}
	}

	return in, nil
}

func hemisphere(hemi string) (string, error) {
	switch strings.ToUpper(hemi) {
	case "L":
		return "CORTEX_LEFT", nil
	case "R":
		return "CORTEX_RIGHT", nil
	}
	return "", fmt.Errorf("%w: hemisphere for the gifti seed file needs to be specified with \"L\" or \"R\"", ErrHemisphereRequired)
}
