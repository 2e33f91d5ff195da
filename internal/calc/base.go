package calc

import (
	"log/slog"

	"github.com/gonum/matrix/mat64"
)

// ModeKind selects how regions are aggregated
type ModeKind int

const (
	// AllLabels produces one mean row per nonzero seed label
	AllLabels ModeKind = iota
	// SingleLabel produces one mean row for Mode.Label
	SingleLabel
	// Weighted produces one row averaged with the seed values as weights
	Weighted
)

func (k ModeKind) String() string {
	switch k {
	case AllLabels:
		return "all_labels"
	case SingleLabel:
		return "single_label"
	case Weighted:
		return "weighted"
	}
	return "unknown"
}

// Mode is the aggregation mode of a run
type Mode struct {
	Kind  ModeKind
	Label float64
}

// AllLabelsMode aggregates every nonzero label
func AllLabelsMode() Mode { return Mode{Kind: AllLabels} }

// SingleLabelMode aggregates only label
func SingleLabelMode(label float64) Mode { return Mode{Kind: SingleLabel, Label: label} }

// WeightedMode computes the seed-weighted average
func WeightedMode() Mode { return Mode{Kind: Weighted} }

// Options configures Run
type Options struct {
	Mode Mode
	// Target names the output in error messages, e.g. the output csv path
	Target string
	Logger *slog.Logger
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// Run aggregates funcMat (samples by timepoints) within the regions of seed
// (samples by 1), restricted by mask (samples by 1, may be nil).
//
// Workflow:
//
//	CheckAlignment -> ValidSamples -> SelectRegions -> ReconcileMask -> MeanTimeSeries | WeightedTimeSeries
//
// The first failing stage aborts the run; no partial result is returned.
func Run(funcMat *mat64.Dense, seed *mat64.Dense, mask *mat64.Dense, opts Options) (*Result, error) {
	logger := orDefault(opts.Logger)

	if err := CheckAlignment(funcMat, seed, mask, logger); err != nil {
		return nil, err
	}

	samples, timepoints := funcMat.Dims()
	valid := ValidSamples(funcMat)
	logger.Debug("derived valid samples",
		slog.Int("samples", samples),
		slog.Int("timepoints", timepoints),
		slog.Int("valid", len(valid)))

	if opts.Mode.Kind == Weighted {
		valid, err := ReconcileMask(valid, seed, mask, nil, opts.Target)
		if err != nil {
			return nil, err
		}

		outputMat, err := WeightedTimeSeries(funcMat, seed, valid)
		if err != nil {
			return nil, err
		}
		return newResult(outputMat, nil, true)
	}

	labels, err := SelectRegions(seed, opts.Mode)
	if err != nil {
		return nil, err
	}

	// every seed label must keep a sample inside the mask, requested or not
	valid, err = ReconcileMask(valid, seed, mask, UniqueLabels(seed), opts.Target)
	if err != nil {
		return nil, err
	}
	logger.Debug("reconciled mask",
		slog.Bool("mask", mask != nil),
		slog.Int("valid", len(valid)),
		slog.Int("regions", len(labels)))

	outputMat, err := MeanTimeSeries(funcMat, seed, valid, labels)
	if err != nil {
		return nil, err
	}

	return newResult(outputMat, labels, false)
}
