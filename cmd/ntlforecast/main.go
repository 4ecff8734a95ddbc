// ntlforecast fits per-pixel trend models to a stack of nighttime-light
// GeoTIFFs and writes predicted rasters for future years.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "ntlforecast",
		Short:         "Per-pixel nighttime-light trend modeling and forecasting",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newPredictCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
