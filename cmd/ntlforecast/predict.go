package main

import (
	"github.com/spf13/cobra"

	"github.com/firmanaf/ntlmodeling/snapshot"
)

func newPredictCmd() *cobra.Command {
	var (
		snapshotPath string
		years        []int
		outDir       string
		prefix       string
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict rasters from a previously written snapshot",
		Long: `Restore a fitted model collection from a snapshot file and write one
predicted GeoTIFF per requested year, without refitting. Predictions
are bit-exact with the run that produced the snapshot.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := snapshot.ReadFile(snapshotPath)
			if err != nil {
				return err
			}
			cmd.Printf("Restored %s model, %dx%d grid, fitted on years %v\n",
				result.Kind, result.Width(), result.Height(), result.Years())

			predictions, err := result.Predict(years)
			if err != nil {
				return err
			}

			return writePredictions(cmd, predictions, outDir, prefix)
		},
	}

	cmd.Flags().StringVarP(&snapshotPath, "snapshot", "s", "", "snapshot file to restore (required)")
	cmd.Flags().IntSliceVarP(&years, "years", "y", nil, "years to predict (required)")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", ".", "output directory for predicted rasters")
	cmd.Flags().StringVar(&prefix, "prefix", "NTL_Pred_", "output filename prefix")
	_ = cmd.MarkFlagRequired("snapshot")
	_ = cmd.MarkFlagRequired("years")

	return cmd
}
