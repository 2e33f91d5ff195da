package io

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/KyungWonPark/nifti"
	"github.com/gonum/matrix/mat64"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// niftiFile describes a single-file NIfTI-1 image with one 4-byte extension block
type niftiFile struct {
	datatype     int16
	bitpix       int16
	dim          [8]int16
	slope, inter float32
	magic        string
	order        binary.ByteOrder
	data         []byte
}

func (f niftiFile) encode(t *testing.T) []byte {
	t.Helper()

	magic := f.magic
	if magic == "" {
		magic = "n+1"
	}
	order := f.order
	if order == nil {
		order = binary.LittleEndian
	}

	hdr := nifti.Nifti1Header{
		SizeofHdr: nifti1HeaderSize,
		Dim:       f.dim,
		Datatype:  f.datatype,
		Bitpix:    f.bitpix,
		VoxOffset: nifti1HeaderSize + 4,
		SclSlope:  f.slope,
		SclInter:  f.inter,
	}
	copy(hdr.Magic[:], magic)

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, order, hdr))
	require.Equal(t, nifti1HeaderSize, buf.Len())
	buf.Write(make([]byte, 4))
	buf.Write(f.data)
	return buf.Bytes()
}

func (f niftiFile) write(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, f.encode(t), 0644))
	return path
}

func encodeVoxels(values []float64, size int, put func(b []byte, v float64)) []byte {
	data := make([]byte, len(values)*size)
	for i, v := range values {
		put(data[i*size:], v)
	}
	return data
}

func TestNiftiToMat64(t *testing.T) {
	le := binary.LittleEndian

	// 2 x 1 x 2 grid, 2 volumes; values are listed in file order (x fastest, t slowest)
	dim := [8]int16{4, 2, 1, 2, 2, 1, 1, 1}

	tests := []struct {
		name         string
		datatype     int16
		bitpix       int16
		size         int
		put          func(b []byte, v float64)
		values       []float64
		slope, inter float32
	}{
		{
			name:     "float32",
			datatype: dtFloat32,
			bitpix:   32,
			size:     4,
			put:      func(b []byte, v float64) { le.PutUint32(b, math.Float32bits(float32(v))) },
			values:   []float64{0.5, -1.25, 3, 4, 5, 6, 7, 1e3},
		},
		{
			name:     "int16 with negatives",
			datatype: dtInt16,
			bitpix:   16,
			size:     2,
			put:      func(b []byte, v float64) { le.PutUint16(b, uint16(int16(v))) },
			values:   []float64{-5, 3, 7, -2, 100, -300, 0, 1},
		},
		{
			name:     "int32 labels",
			datatype: dtInt32,
			bitpix:   32,
			size:     4,
			put:      func(b []byte, v float64) { le.PutUint32(b, uint32(int32(v))) },
			values:   []float64{1, 2, 0, 2, 1, 1, 360, 0},
		},
		{
			name:     "int8",
			datatype: dtInt8,
			bitpix:   8,
			size:     1,
			put:      func(b []byte, v float64) { b[0] = byte(int8(v)) },
			values:   []float64{-128, 127, -1, 0, 1, 2, 3, 4},
		},
		{
			name:     "uint16",
			datatype: dtUint16,
			bitpix:   16,
			size:     2,
			put:      func(b []byte, v float64) { le.PutUint16(b, uint16(v)) },
			values:   []float64{65535, 0, 1, 2, 3, 4, 5, 6},
		},
		{
			name:     "float64",
			datatype: dtFloat64,
			bitpix:   64,
			size:     8,
			put:      func(b []byte, v float64) { le.PutUint64(b, math.Float64bits(v)) },
			values:   []float64{0.1, 0.2, 0.3, 1e-300, 5, 6, 7, 8},
		},
		{
			name:     "scaled float32",
			datatype: dtFloat32,
			bitpix:   32,
			size:     4,
			put:      func(b []byte, v float64) { le.PutUint32(b, math.Float32bits(float32(v))) },
			values:   []float64{1, 2, 3, 4, 5, 6, 7, 8},
			slope:    2,
			inter:    0.5,
		},
		{
			name:     "scaled int16",
			datatype: dtInt16,
			bitpix:   16,
			size:     2,
			put:      func(b []byte, v float64) { le.PutUint16(b, uint16(int16(v))) },
			values:   []float64{-4, 4, 8, 0, 1, 2, 3, 5},
			slope:    0.25,
			inter:    -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := niftiFile{
				datatype: tt.datatype,
				bitpix:   tt.bitpix,
				dim:      dim,
				slope:    tt.slope,
				inter:    tt.inter,
				data:     encodeVoxels(tt.values, tt.size, tt.put),
			}

			got, err := NiftiToMat64(f.write(t, "img.nii"))
			require.NoError(t, err)

			want := mat64.NewDense(4, 2, nil)
			for i, v := range tt.values {
				x, z, vol := i%2, (i/2)%2, i/4
				if tt.slope != 0 {
					v = v*float64(tt.slope) + float64(tt.inter)
				}
				want.Set(x*2+z, vol, v)
			}
			assert.Equal(t, want.RawMatrix().Data, got.RawMatrix().Data)
		})
	}
}

func TestNiftiToMat64_VoxelOrder(t *testing.T) {
	// 2 x 3 x 2 single volume, voxel value = 100x + 10y + z
	const nx, ny, nz = 2, 3, 2
	var values []float64
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				values = append(values, float64(100*x+10*y+z))
			}
		}
	}

	f := niftiFile{
		datatype: dtInt16,
		bitpix:   16,
		dim:      [8]int16{3, nx, ny, nz, 1, 1, 1, 1},
		data: encodeVoxels(values, 2, func(b []byte, v float64) {
			binary.LittleEndian.PutUint16(b, uint16(int16(v)))
		}),
	}

	got, err := NiftiToMat64(f.write(t, "atlas.nii"))
	require.NoError(t, err)

	rows, cols := got.Dims()
	require.Equal(t, [2]int{nx * ny * nz, 1}, [2]int{rows, cols})
	assert.Equal(t, []float64{0, 1, 10, 11, 20, 21, 100, 101, 110, 111, 120, 121}, got.RawMatrix().Data)
}

func TestNiftiToMat64_Gzipped(t *testing.T) {
	f := niftiFile{
		datatype: dtInt32,
		bitpix:   32,
		dim:      [8]int16{3, 2, 1, 1, 1, 1, 1, 1},
		data: encodeVoxels([]float64{1, 2}, 4, func(b []byte, v float64) {
			binary.LittleEndian.PutUint32(b, uint32(int32(v)))
		}),
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(f.encode(t))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "atlas.nii.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	got, err := NiftiToMat64(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, got.RawMatrix().Data)
}

func TestNiftiToMat64_Rejects(t *testing.T) {
	int16Data := make([]byte, 2*2*2*2)
	dim := [8]int16{4, 2, 1, 2, 2, 1, 1, 1}

	tests := []struct {
		name    string
		content func(t *testing.T) []byte
		wantErr error
	}{
		{
			name:    "not a nifti",
			content: func(*testing.T) []byte { return []byte("not a nifti") },
			wantErr: ErrNotNifti1,
		},
		{
			name:    "empty header",
			content: func(*testing.T) []byte { return make([]byte, nifti1HeaderSize+4) },
			wantErr: ErrNotNifti1,
		},
		{
			name:    "big endian",
			content: niftiFile{datatype: dtInt16, bitpix: 16, dim: dim, order: binary.BigEndian, data: int16Data}.encode,
			wantErr: ErrUnsupportedNifti,
		},
		{
			name:    "complex datatype",
			content: niftiFile{datatype: 32, bitpix: 64, dim: dim, data: make([]byte, 64)}.encode,
			wantErr: ErrUnsupportedNifti,
		},
		{
			name:    "bitpix disagrees with datatype",
			content: niftiFile{datatype: dtInt16, bitpix: 32, dim: dim, data: make([]byte, 32)}.encode,
			wantErr: ErrUnsupportedNifti,
		},
		{
			name:    "header and image pair",
			content: niftiFile{datatype: dtInt16, bitpix: 16, dim: dim, magic: "ni1", data: int16Data}.encode,
			wantErr: ErrUnsupportedNifti,
		},
		{
			name:    "5-D image",
			content: niftiFile{datatype: dtUint8, bitpix: 8, dim: [8]int16{5, 1, 1, 1, 1, 4, 1, 1}, data: make([]byte, 4)}.encode,
			wantErr: ErrUnsupportedNifti,
		},
		{
			name:    "truncated data",
			content: niftiFile{datatype: dtInt16, bitpix: 16, dim: dim, data: int16Data[:10]}.encode,
			wantErr: ErrTruncatedNifti,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "img.nii")
			require.NoError(t, os.WriteFile(path, tt.content(t), 0644))

			_, err := NiftiToMat64(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestNiftiToMat64_MissingFile(t *testing.T) {
	_, err := NiftiToMat64(filepath.Join(t.TempDir(), "absent.nii"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadNiftiHeader_Dims(t *testing.T) {
	tests := []struct {
		name string
		dim  [8]int16
		want NiftiDims
	}{
		{name: "4-D", dim: [8]int16{4, 91, 109, 91, 600, 1, 1, 1}, want: NiftiDims{X: 91, Y: 109, Z: 91, T: 600}},
		{name: "3-D", dim: [8]int16{3, 10, 12, 8, 0, 0, 0, 0}, want: NiftiDims{X: 10, Y: 12, Z: 8, T: 1}},
		{name: "trailing singleton dims", dim: [8]int16{5, 2, 2, 2, 3, 1, 0, 0}, want: NiftiDims{X: 2, Y: 2, Z: 2, T: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := niftiFile{datatype: dtFloat32, bitpix: 32, dim: tt.dim}
			hdr, got, err := ReadNiftiHeader(bytes.NewReader(f.encode(t)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.X*tt.want.Y*tt.want.Z, got.Samples())
			assert.Equal(t, int16(dtFloat32), hdr.Datatype)
		})
	}
}
