package loader

import (
	"path/filepath"
	"strings"
)

// FileType is the on-disk format of an input
type FileType int

const (
	Unknown FileType = iota
	Nifti
	Cifti
	Gifti
	Npy
	CSV
)

func (t FileType) String() string {
	switch t {
	case Nifti:
		return "nifti"
	case Cifti:
		return "cifti"
	case Gifti:
		return "gifti"
	case Npy:
		return "npy"
	case CSV:
		return "csv"
	}
	return "unknown"
}

var ciftiSuffixes = []string{
	".dtseries.nii", ".dscalar.nii", ".dlabel.nii",
	".ptseries.nii", ".pscalar.nii", ".plabel.nii",
	".dconn.nii", ".pconn.nii",
}

var giftiSuffixes = []string{
	".func.gii", ".shape.gii", ".label.gii", ".surf.gii", ".gii",
}

// DetermineFileType returns the format of path and its base name without the format suffix
func DetermineFileType(path string) (FileType, string) {
	base := filepath.Base(path)

	switch {
	case strings.HasSuffix(base, ".nii"):
		for _, suffix := range ciftiSuffixes {
			if strings.HasSuffix(base, suffix) {
				return Cifti, strings.TrimSuffix(base, suffix)
			}
		}
		return Nifti, strings.TrimSuffix(base, ".nii")
	case strings.HasSuffix(base, ".nii.gz"):
		return Nifti, strings.TrimSuffix(base, ".nii.gz")
	case strings.HasSuffix(base, ".gii"):
		for _, suffix := range giftiSuffixes {
			if strings.HasSuffix(base, suffix) {
				return Gifti, strings.TrimSuffix(base, suffix)
			}
		}
	case strings.HasSuffix(base, ".npy"):
		return Npy, strings.TrimSuffix(base, ".npy")
	case strings.HasSuffix(base, ".csv"):
		return CSV, strings.TrimSuffix(base, ".csv")
	}

	return Unknown, base
}

// DefaultOutputCSV is <func dir>/<func base>_<seed base>_meants.csv
func DefaultOutputCSV(funcPath string, seedPath string) string {
	_, funcBase := DetermineFileType(funcPath)
	_, seedBase := DetermineFileType(seedPath)
	return filepath.Join(filepath.Dir(funcPath), funcBase+"_"+seedBase+"_meants.csv")
}
