// Package wb drives Connectome Workbench's wb_command for the conversions
// that turn cifti and gifti files into NIfTI volumes the loader can read.
package wb

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Runner runs one wb_command invocation and returns its standard output
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// Command runs the wb_command binary at Path
type Command struct {
	Path   string
	Logger *slog.Logger
}

// Run executes Path with args
func (c *Command) Run(ctx context.Context, args ...string) ([]byte, error) {
	if c.Logger != nil {
		c.Logger.Debug("running wb_command", slog.String("path", c.Path), slog.Any("args", args))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("[wb] %s %s failed: %w: %s",
			c.Path, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}

// Info is the part of -file-information the loader needs
type Info struct {
	MapsToSurface bool
	MapsToVolume  bool
}

// FileInfo reports which geometry a cifti file maps to
func FileInfo(ctx context.Context, r Runner, path string) (Info, error) {
	out, err := r.Run(ctx, "-file-information", path, "-no-map-info")
	if err != nil {
		return Info{}, err
	}

	var info Info
	for _, line := range strings.Split(string(out), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		truth := strings.TrimSpace(value) == "true"
		switch strings.TrimSpace(key) {
		case "Maps to Surface":
			info.MapsToSurface = truth
		case "Maps to Volume":
			info.MapsToVolume = truth
		}
	}

	return info, nil
}

// NumberOfMaps returns the number of maps (columns) in a cifti file
func NumberOfMaps(ctx context.Context, r Runner, path string) (int, error) {
	out, err := r.Run(ctx, "-file-information", path, "-only-number-of-maps")
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, fmt.Errorf("[wb] %s: unexpected number of maps %q", path, strings.TrimSpace(string(out)))
	}
	return n, nil
}

// CiftiToNifti writes the cifti matrix as a NIfTI-1 volume, one row per voxel
func CiftiToNifti(ctx context.Context, r Runner, cifti string, out string) error {
	_, err := r.Run(ctx, "-cifti-convert", "-to-nifti", cifti, out)
	return err
}

// MetricToNifti writes a gifti metric as a NIfTI-1 volume, one row per vertex
func MetricToNifti(ctx context.Context, r Runner, metric string, out string) error {
	_, err := r.Run(ctx, "-metric-convert", "-to-nifti", metric, out)
	return err
}

// SeparateVolume extracts all volume structures of a cifti file into a NIfTI volume
func SeparateVolume(ctx context.Context, r Runner, cifti string, out string) error {
	_, err := r.Run(ctx, "-cifti-separate", cifti, "COLUMN", "-volume-all", out)
	return err
}

// SeparateMetric extracts one surface structure (e.g. CORTEX_LEFT) of a cifti file into a gifti metric
func SeparateMetric(ctx context.Context, r Runner, cifti string, structure string, out string) error {
	_, err := r.Run(ctx, "-cifti-separate", cifti, "COLUMN", "-metric", structure, out)
	return err
}

// LabelsToCombinedScalar turns a dlabel atlas into one dscalar map whose
// values are the label indices: every label becomes an ROI map, and map k is
// added in with weight k.
func LabelsToCombinedScalar(ctx context.Context, r Runner, dlabel string, rois string, out string) error {
	if _, err := r.Run(ctx, "-cifti-all-labels-to-rois", dlabel, "1", rois); err != nil {
		return err
	}

	numMaps, err := NumberOfMaps(ctx, r, rois)
	if err != nil {
		return err
	}

	switch {
	case numMaps < 1:
		return fmt.Errorf("[wb] %s has no labels", dlabel)
	case numMaps == 1:
		_, err := r.Run(ctx, "-cifti-math", "x", out, "-var", "x", rois, "-select", "1", "1")
		return err
	}

	partial := func(k int) string {
		return strings.TrimSuffix(out, ".dscalar.nii") + ".upto" + strconv.Itoa(k) + ".dscalar.nii"
	}

	prev := partial(2)
	if _, err := r.Run(ctx, "-cifti-math", "(x*1)+(y*2)", prev,
		"-var", "x", rois, "-select", "1", "1",
		"-var", "y", rois, "-select", "1", "2"); err != nil {
		return err
	}

	for roi := 3; roi <= numMaps; roi++ {
		next := partial(roi)
		if _, err := r.Run(ctx, "-cifti-math", fmt.Sprintf("x+(y*%d)", roi), next,
			"-var", "x", prev,
			"-var", "y", rois, "-select", "1", strconv.Itoa(roi)); err != nil {
			return err
		}
		prev = next
	}

	return os.Rename(prev, out)
}
