package io

import (
	"encoding/binary"
	"errors"
	"fmt"
	stdio "io"
	"math"
	"math/bits"
	"os"
	"strings"

	"github.com/KyungWonPark/nifti"
	"github.com/gonum/matrix/mat64"
	"github.com/klauspost/compress/gzip"
)

const (
	nifti1HeaderSize = 348
	nifti2HeaderSize = 540
)

var (
	// ErrNotNifti1 is returned for files without a NIfTI-1 header
	ErrNotNifti1 = errors.New("io: not a NIfTI-1 file")
	// ErrUnsupportedNifti is returned for NIfTI-1 files this reader cannot decode
	ErrUnsupportedNifti = errors.New("io: unsupported NIfTI-1 file")
	// ErrTruncatedNifti is returned when the file ends before the last voxel
	ErrTruncatedNifti = errors.New("io: truncated NIfTI-1 file")
)

// NIfTI-1 datatype codes
const (
	dtUint8   = 2
	dtInt16   = 4
	dtInt32   = 8
	dtFloat32 = 16
	dtFloat64 = 64
	dtInt8    = 256
	dtUint16  = 512
	dtUint32  = 768
	dtInt64   = 1024
	dtUint64  = 1280
)

type voxelType struct {
	size   int
	decode func(b []byte) float64
}

var le = binary.LittleEndian

// voxelTypes are the real-valued datatypes, stored little-endian
var voxelTypes = map[int16]voxelType{
	dtUint8:   {1, func(b []byte) float64 { return float64(b[0]) }},
	dtInt8:    {1, func(b []byte) float64 { return float64(int8(b[0])) }},
	dtInt16:   {2, func(b []byte) float64 { return float64(int16(le.Uint16(b))) }},
	dtUint16:  {2, func(b []byte) float64 { return float64(le.Uint16(b)) }},
	dtInt32:   {4, func(b []byte) float64 { return float64(int32(le.Uint32(b))) }},
	dtUint32:  {4, func(b []byte) float64 { return float64(le.Uint32(b)) }},
	dtFloat32: {4, func(b []byte) float64 { return float64(math.Float32frombits(le.Uint32(b))) }},
	dtFloat64: {8, func(b []byte) float64 { return math.Float64frombits(le.Uint64(b)) }},
	dtInt64:   {8, func(b []byte) float64 { return float64(int64(le.Uint64(b))) }},
	dtUint64:  {8, func(b []byte) float64 { return float64(le.Uint64(b)) }},
}

// NiftiDims holds the image grid size; T is 1 for a 3-D image
type NiftiDims struct {
	X, Y, Z, T int
}

// Samples is the number of voxels in one volume
func (d NiftiDims) Samples() int {
	return d.X * d.Y * d.Z
}

// ReadNiftiHeader reads a single-file, little-endian NIfTI-1 header from r
// and checks that its datatype can be decoded.
func ReadNiftiHeader(r stdio.Reader) (nifti.Nifti1Header, NiftiDims, error) {
	var hdr nifti.Nifti1Header
	if err := binary.Read(r, le, &hdr); err != nil {
		return hdr, NiftiDims{}, fmt.Errorf("%w: %v", ErrNotNifti1, err)
	}

	swapped := bits.ReverseBytes32(uint32(hdr.SizeofHdr))
	switch {
	case hdr.SizeofHdr == nifti1HeaderSize:
	case swapped == nifti1HeaderSize:
		return hdr, NiftiDims{}, fmt.Errorf("%w: big-endian byte order", ErrUnsupportedNifti)
	case hdr.SizeofHdr == nifti2HeaderSize || swapped == nifti2HeaderSize:
		return hdr, NiftiDims{}, fmt.Errorf("%w: NIfTI-2 header", ErrNotNifti1)
	default:
		return hdr, NiftiDims{}, fmt.Errorf("%w: sizeof_hdr is %d", ErrNotNifti1, hdr.SizeofHdr)
	}

	if magic := string(hdr.Magic[:3]); magic != "n+1" {
		return hdr, NiftiDims{}, fmt.Errorf("%w: magic %q, only single-file .nii images are read", ErrUnsupportedNifti, magic)
	}

	vt, ok := voxelTypes[hdr.Datatype]
	if !ok {
		return hdr, NiftiDims{}, fmt.Errorf("%w: datatype %d", ErrUnsupportedNifti, hdr.Datatype)
	}
	if int(hdr.Bitpix) != 8*vt.size {
		return hdr, NiftiDims{}, fmt.Errorf("%w: bitpix %d for datatype %d", ErrUnsupportedNifti, hdr.Bitpix, hdr.Datatype)
	}
	if hdr.VoxOffset < nifti1HeaderSize {
		return hdr, NiftiDims{}, fmt.Errorf("%w: vox_offset is %g", ErrNotNifti1, hdr.VoxOffset)
	}

	rank := int(hdr.Dim[0])
	if rank < 1 || rank > 7 {
		return hdr, NiftiDims{}, fmt.Errorf("%w: dim[0] is %d", ErrNotNifti1, rank)
	}

	size := func(i int) int {
		if i > rank || hdr.Dim[i] < 1 {
			return 1
		}
		return int(hdr.Dim[i])
	}
	for i := 5; i <= rank; i++ {
		if size(i) != 1 {
			return hdr, NiftiDims{}, fmt.Errorf("%w: %d-D image (dim %v)", ErrUnsupportedNifti, rank, hdr.Dim)
		}
	}

	return hdr, NiftiDims{X: size(1), Y: size(2), Z: size(3), T: size(4)}, nil
}

// NiftiToMat64 reads a .nii or .nii.gz image as a voxels by volumes matrix.
// Voxels are flattened with x slowest and z fastest. scl_slope and scl_inter
// are applied when the slope is set.
func NiftiToMat64(path string) (*mat64.Dense, error) {
	r, err := openNifti(path)
	if err != nil {
		return nil, fmt.Errorf("[NiftiToMat64] failed to open file: %w", err)
	}
	defer r.Close()

	hdr, dims, err := ReadNiftiHeader(r)
	if err != nil {
		return nil, fmt.Errorf("[NiftiToMat64] %s: %w", path, err)
	}

	// skip header extensions
	if _, err := stdio.CopyN(stdio.Discard, r, int64(hdr.VoxOffset)-nifti1HeaderSize); err != nil {
		return nil, fmt.Errorf("[NiftiToMat64] %s: %w: no data after vox_offset %g", path, ErrTruncatedNifti, hdr.VoxOffset)
	}

	vt := voxelTypes[hdr.Datatype]
	data := make([]byte, dims.Samples()*dims.T*vt.size)
	if _, err := stdio.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("[NiftiToMat64] %s: %w: want %d data bytes: %v", path, ErrTruncatedNifti, len(data), err)
	}

	scale := scaling(hdr)

	// on disk x varies fastest and t slowest
	matrix := mat64.NewDense(dims.Samples(), dims.T, nil)
	i := 0
	for t := 0; t < dims.T; t++ {
		for z := 0; z < dims.Z; z++ {
			for y := 0; y < dims.Y; y++ {
				for x := 0; x < dims.X; x++ {
					value := vt.decode(data[i*vt.size:])
					matrix.Set((x*dims.Y+y)*dims.Z+z, t, scale(value))
					i++
				}
			}
		}
	}

	return matrix, nil
}

// scaling returns the scl_slope/scl_inter transform; a zero slope means unscaled
func scaling(hdr nifti.Nifti1Header) func(float64) float64 {
	slope, inter := float64(hdr.SclSlope), float64(hdr.SclInter)
	if slope == 0 || math.IsNaN(slope) || math.IsInf(slope, 0) || (slope == 1 && inter == 0) {
		return func(v float64) float64 { return v }
	}
	return func(v float64) float64 { return v*slope + inter }
}

type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	g.Reader.Close()
	return g.file.Close()
}

// openNifti opens path, decompressing .gz files on the fly
func openNifti(path string) (stdio.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}

	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &gzipFile{Reader: zr, file: f}, nil
}
