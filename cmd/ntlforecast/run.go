package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/firmanaf/ntlmodeling"
	"github.com/firmanaf/ntlmodeling/format"
	"github.com/firmanaf/ntlmodeling/raster"
	"github.com/firmanaf/ntlmodeling/regression"
	"github.com/firmanaf/ntlmodeling/snapshot"
)

type runFlags struct {
	inputDir    string
	model       string
	degree      int
	alpha       float64
	normalize   string
	years       []int
	outDir      string
	prefix      string
	clamp       bool
	neutral     float64
	workers     int
	batchSize   int
	snapshot    string
	compression string
	scatter     string
	scatterSize int
	seed        int64
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run [input.tif...]",
		Short: "Fit models to input rasters and write predicted rasters",
		Long: `Fit a per-pixel trend model to two or more annual rasters and write
one predicted GeoTIFF per requested year. Inputs are given either as
explicit file arguments or with --input, which reads every VIIRS_*.tif
in a directory. The acquisition year of each input is inferred from
its filename (the last four-digit group, e.g. VIIRS_2021.tif).`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := resolveInputs(args, flags.inputDir)
			if err != nil {
				return err
			}

			return runModel(cmd, inputs, &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.inputDir, "input", "i", "", "directory containing VIIRS_*.tif inputs")
	cmd.Flags().StringVarP(&flags.model, "model", "m", "linear", "model family: linear, polynomial, ridge, lasso")
	cmd.Flags().IntVarP(&flags.degree, "degree", "d", 2, "polynomial degree (polynomial model only)")
	cmd.Flags().Float64VarP(&flags.alpha, "alpha", "a", 1.0, "regularization strength (ridge and lasso)")
	cmd.Flags().StringVarP(&flags.normalize, "normalize", "n", "none", "year normalization: none, minmax, zscore")
	cmd.Flags().IntSliceVarP(&flags.years, "years", "y", nil, "years to predict (required)")
	cmd.Flags().StringVarP(&flags.outDir, "out-dir", "o", ".", "output directory for predicted rasters")
	cmd.Flags().StringVar(&flags.prefix, "prefix", "NTL_Pred_", "output filename prefix")
	cmd.Flags().BoolVar(&flags.clamp, "clamp", false, "clamp negative predictions to zero")
	cmd.Flags().Float64Var(&flags.neutral, "neutral", 0, "substitution value for NoData cells")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "worker goroutines (0 = number of CPUs)")
	cmd.Flags().IntVar(&flags.batchSize, "batch-size", 0, "pixels per solver batch (0 = default)")
	cmd.Flags().StringVar(&flags.snapshot, "snapshot", "", "write the fitted models to this snapshot file")
	cmd.Flags().StringVar(&flags.compression, "snapshot-compression", "zstd", "snapshot codec: none, zstd, s2, lz4")
	cmd.Flags().StringVar(&flags.scatter, "scatter", "", "write actual/predicted sample pairs to this CSV file")
	cmd.Flags().IntVar(&flags.scatterSize, "scatter-size", 10000, "number of sample pairs (0 = all)")
	cmd.Flags().Int64Var(&flags.seed, "seed", 42, "sampling seed for --scatter")
	_ = cmd.MarkFlagRequired("years")

	return cmd
}

// resolveInputs decides the input raster set from positional arguments or
// the --input directory; exactly one of the two must be used and at least
// two rasters are required.
func resolveInputs(args []string, dir string) ([]string, error) {
	if dir != "" && len(args) > 0 {
		return nil, fmt.Errorf("pass input files as arguments or with --input, not both")
	}
	if dir != "" {
		matches, err := filepath.Glob(filepath.Join(dir, "VIIRS_*.tif"))
		if err != nil {
			return nil, err
		}
		if len(matches) < 2 {
			return nil, fmt.Errorf("%s contains %d VIIRS_*.tif files, need at least 2", dir, len(matches))
		}

		return matches, nil
	}
	if len(args) < 2 {
		return nil, fmt.Errorf("need at least 2 input rasters, got %d", len(args))
	}

	return args, nil
}

func modelOptions(flags *runFlags) ([]ntlmodeling.Option, error) {
	kind := regression.ModelKindFromString(flags.model)
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown model %q", flags.model)
	}
	norm := regression.NormalizationFromString(flags.normalize)
	if !norm.Valid() {
		return nil, fmt.Errorf("unknown normalization %q", flags.normalize)
	}

	opts := []ntlmodeling.Option{
		ntlmodeling.WithModelKind(kind),
		ntlmodeling.WithAlpha(flags.alpha),
		ntlmodeling.WithNormalization(norm),
		ntlmodeling.WithNeutralValue(flags.neutral),
	}
	if kind == regression.ModelPolynomial {
		opts = append(opts, ntlmodeling.WithDegree(flags.degree))
	}
	if flags.clamp {
		opts = append(opts, ntlmodeling.WithClampNonNegative())
	}
	if flags.workers > 0 {
		opts = append(opts, ntlmodeling.WithWorkers(flags.workers))
	}
	if flags.batchSize > 0 {
		opts = append(opts, ntlmodeling.WithBatchSize(flags.batchSize))
	}

	return opts, nil
}

func runModel(cmd *cobra.Command, args []string, flags *runFlags) error {
	opts, err := modelOptions(flags)
	if err != nil {
		return err
	}

	stack, err := ntlmodeling.LoadStack(args)
	if err != nil {
		return err
	}
	cmd.Printf("Loaded %d layers (%dx%d), years %v\n",
		stack.Len(), stack.Width(), stack.Height(), stack.Years())

	report, err := ntlmodeling.Run(stack, flags.years, opts...)
	if err != nil {
		return err
	}

	if err := writePredictions(cmd, report.Predictions, flags.outDir, flags.prefix); err != nil {
		return err
	}

	if flags.snapshot != "" {
		ct := format.CompressionTypeFromString(flags.compression)
		if !ct.Valid() {
			return fmt.Errorf("unknown snapshot compression %q", flags.compression)
		}
		if err := snapshot.WriteFile(flags.snapshot, report.Result, snapshot.WithCompression(ct)); err != nil {
			return err
		}
		cmd.Printf("Wrote snapshot %s\n", flags.snapshot)
	}

	if flags.scatter != "" {
		if err := writeScatter(report.Result, stack, flags); err != nil {
			return err
		}
		cmd.Printf("Wrote sample pairs %s\n", flags.scatter)
	}

	printSummary(cmd, report)

	return nil
}

func writePredictions(cmd *cobra.Command, predictions map[int]*raster.Layer, outDir, prefix string) error {
	for year, layer := range predictions {
		path := filepath.Join(outDir, fmt.Sprintf("%s%d.tif", prefix, year))
		if err := ntlmodeling.WriteLayer(path, layer); err != nil {
			return err
		}
		cmd.Printf("Wrote %s\n", path)
	}

	return nil
}

func writeScatter(result *regression.FitResult, stack *raster.Stack, flags *runFlags) error {
	pairs, err := result.SamplePairs(stack, flags.scatterSize, flags.seed)
	if err != nil {
		return err
	}

	f, err := os.Create(flags.scatter)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"actual", "predicted"}); err != nil {
		return err
	}
	for _, p := range pairs {
		record := []string{
			strconv.FormatFloat(p.Actual, 'g', -1, 64),
			strconv.FormatFloat(p.Predicted, 'g', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()

	return w.Error()
}

func printSummary(cmd *cobra.Command, report *ntlmodeling.Report) {
	r := report.Result
	cmd.Printf("Model: %s", r.Kind)
	if r.Kind == regression.ModelPolynomial {
		cmd.Printf(" (degree %d", r.Degree)
		if r.DegreeClamped {
			cmd.Printf(", clamped")
		}
		cmd.Printf(")")
	}
	if r.Kind == regression.ModelRidge || r.Kind == regression.ModelLasso {
		cmd.Printf(" (alpha %g)", r.Alpha)
	}
	cmd.Println()
	cmd.Printf("R-squared:    %.6f\n", report.Metrics.RSquared)
	cmd.Printf("RMSE:         %.6f\n", report.Metrics.RMSE)
	cmd.Printf("Robust share: %.2f%% (pixel R-squared >= %.2f)\n", report.RobustShare*100, ntlmodeling.RobustThreshold)
	cmd.Printf("Degenerate:   %d of %d pixels\n", r.DegenerateCount, r.Pixels())
}
