package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KyungWonPark/meants/internal/calc"
	"github.com/KyungWonPark/meants/internal/config"
	"github.com/KyungWonPark/meants/internal/io"
	"github.com/KyungWonPark/meants/internal/loader"
	"github.com/KyungWonPark/meants/internal/logging"
	"github.com/KyungWonPark/meants/internal/wb"
	"github.com/spf13/cobra"
)

type options struct {
	outputCSV    string
	outputLabels string
	outputNpy    string
	mask         string
	roiLabel     int
	weighted     bool
	hemi         string
	debug        bool
	configPath   string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "meants [flags] <func> <seed>",
		Short: "Produces a csv of the mean time series within the seed regions",
		Long: `Produces a csv file of mean voxel (or vertex) time series within each
seed label. The seed may be a NIfTI, cifti (dscalar or dlabel) or gifti
map, or an npy/csv array aligned with an npy/csv func array.

With --weighted the seed values are used as weights and one weighted
average time series is written.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var mode calc.Mode
			switch {
			case opts.weighted:
				mode = calc.WeightedMode()
			case cmd.Flags().Changed("roi-label"):
				mode = calc.SingleLabelMode(float64(opts.roiLabel))
			default:
				mode = calc.AllLabelsMode()
			}
			return run(cmd.Context(), args[0], args[1], mode, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.outputCSV, "outputcsv", "", "output csv file (default <func dir>/<func>_<seed>_meants.csv)")
	flags.StringVar(&opts.outputLabels, "outputlabels", "", "write the seed label of each output row to this csv")
	flags.StringVar(&opts.outputNpy, "outputnpy", "", "also write the output matrix as npy")
	flags.StringVar(&opts.mask, "mask", "", "only voxels (vertices) inside this mask are averaged")
	flags.IntVar(&opts.roiLabel, "roi-label", 0, "only extract the time series for this seed label")
	flags.BoolVar(&opts.weighted, "weighted", false, "compute the weighted average using the seed values as weights")
	flags.StringVar(&opts.hemi, "hemi", "", "hemisphere (L or R) of a gifti seed paired with cifti data")
	flags.BoolVar(&opts.debug, "debug", false, "debug logging")
	flags.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	cmd.MarkFlagsMutuallyExclusive("roi-label", "weighted")

	return cmd
}

func run(ctx context.Context, funcPath string, seedPath string, mode calc.Mode, opts options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.debug {
		cfg.Logging.Level = "debug"
	}
	logger := logging.New(cfg.Logging)

	outputCSV := opts.outputCSV
	if outputCSV == "" {
		outputCSV = loader.DefaultOutputCSV(funcPath, seedPath)
	}

	scratch, err := wb.NewTempDir(cfg.TempDir, cfg.KeepTemp)
	if err != nil {
		return err
	}
	defer func() {
		if err := scratch.Close(); err != nil {
			logger.Warn("failed to remove temp dir", slog.String("path", scratch.Path), slog.Any("error", err))
		}
	}()
	logger.Info("created temp dir", slog.String("path", scratch.Path), slog.Bool("keep", cfg.KeepTemp))

	l := &loader.Loader{
		Runner:  &wb.Command{Path: cfg.WBCommand, Logger: logger},
		Scratch: scratch,
		Logger:  logger,
	}
	in, err := l.Load(ctx, loader.Request{Func: funcPath, Seed: seedPath, Mask: opts.mask, Hemi: opts.hemi})
	if err != nil {
		return err
	}
	logger.Debug("loaded inputs", slog.String("space", in.Space.String()))

	result, err := calc.Run(in.Func, in.Seed, in.Mask, calc.Options{
		Mode:   mode,
		Target: outputCSV,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	if err := io.Mat64toCSV(outputCSV, result.Matrix); err != nil {
		return err
	}
	rows, cols := result.Matrix.Dims()
	logger.Info("wrote mean time series",
		slog.String("path", outputCSV),
		slog.String("mode", mode.Kind.String()),
		slog.Int("rows", rows),
		slog.Int("timepoints", cols))

	if opts.outputLabels != "" {
		if result.Weighted {
			logger.Warn("no labels in weighted mode, skipping label output", slog.String("path", opts.outputLabels))
		} else if err := io.LabelsToCSV(opts.outputLabels, result.Labels); err != nil {
			return err
		}
	}

	if opts.outputNpy != "" {
		if err := io.Mat64toNpy(opts.outputNpy, result.Matrix); err != nil {
			return fmt.Errorf("[meants] failed to write %s: %w", opts.outputNpy, err)
		}
	}

	return nil
}
