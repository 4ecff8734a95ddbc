// Package ntlmodeling models multi-year nighttime-light rasters with
// per-pixel regression and synthesizes predicted rasters for future years.
//
// Each pixel's brightness series across the input years is fitted
// independently with one of four model families (linear, polynomial,
// ridge, lasso). The fitted collection predicts whole rasters for any
// requested year, reports pooled goodness-of-fit metrics, and can be
// persisted as a snapshot for later prediction without refitting.
//
// # Basic Usage
//
// Fitting a stack of GeoTIFF layers and forecasting two years ahead:
//
//	import "github.com/firmanaf/ntlmodeling"
//
//	stack, err := ntlmodeling.LoadStack([]string{
//	    "VIIRS_2019.tif", "VIIRS_2020.tif", "VIIRS_2021.tif", "VIIRS_2022.tif",
//	})
//	if err != nil {
//	    return err
//	}
//
//	report, err := ntlmodeling.Run(stack, []int{2023, 2024},
//	    ntlmodeling.WithModelKind(ntlmodeling.ModelRidge),
//	    ntlmodeling.WithAlpha(0.5),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("R2=%.4f RMSE=%.4f\n", report.Metrics.RSquared, report.Metrics.RMSE)
//
//	for year, layer := range report.Predictions {
//	    _ = ntlmodeling.WriteLayer(fmt.Sprintf("NTL_Pred_%d.tif", year), layer)
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the raster
// and regression packages, simplifying the most common pipeline. For
// fine-grained control (custom validity handling, per-pixel model
// inspection, snapshots) use the raster, regression and snapshot
// packages directly.
package ntlmodeling

import (
	"fmt"

	"github.com/firmanaf/ntlmodeling/errs"
	"github.com/firmanaf/ntlmodeling/raster"
	"github.com/firmanaf/ntlmodeling/regression"
)

// Re-exported configuration surface of the regression package, so simple
// pipelines only import the root package.
type Option = regression.Option

var (
	WithModelKind        = regression.WithModelKind
	WithDegree           = regression.WithDegree
	WithAlpha            = regression.WithAlpha
	WithNormalization    = regression.WithNormalization
	WithNeutralValue     = regression.WithNeutralValue
	WithBatchSize        = regression.WithBatchSize
	WithWorkers          = regression.WithWorkers
	WithClampNonNegative = regression.WithClampNonNegative
	WithProgress         = regression.WithProgress
)

const (
	ModelLinear     = regression.ModelLinear
	ModelPolynomial = regression.ModelPolynomial
	ModelRidge      = regression.ModelRidge
	ModelLasso      = regression.ModelLasso

	NormNone   = regression.NormNone
	NormMinMax = regression.NormMinMax
	NormZScore = regression.NormZScore
)

// RobustThreshold is the per-pixel R-squared cutoff used by Run when
// computing the share of robustly modeled pixels.
const RobustThreshold = 0.7

// Report bundles the outputs of a full modeling run.
type Report struct {
	// Result is the fitted model collection.
	Result *regression.FitResult
	// Metrics are pooled over every observed (year, pixel) cell.
	Metrics regression.Metrics
	// RobustShare is the fraction of assessable pixels whose individual
	// R-squared reaches RobustThreshold.
	RobustShare float64
	// Predictions maps each requested year to its synthesized raster.
	Predictions map[int]*raster.Layer
}

// LoadStack reads GeoTIFF layers and assembles them into a stack. The
// acquisition year of each file is inferred from its name (the last
// four-digit group, e.g. VIIRS_2021.tif).
func LoadStack(paths []string) (*raster.Stack, error) {
	layers := make([]*raster.Layer, 0, len(paths))
	for _, path := range paths {
		year, err := raster.YearFromFilename(path)
		if err != nil {
			return nil, fmt.Errorf("infer year of %s: %w", path, err)
		}
		layer, err := raster.ReadLayer(path, year)
		if err != nil {
			return nil, err
		}
		layers = append(layers, layer)
	}

	if i, j, ok := raster.FindDuplicate(layers); ok {
		return nil, fmt.Errorf("%w: %s and %s contain identical data", errs.ErrInsufficientData, paths[i], paths[j])
	}

	return raster.NewStack(layers)
}

// WriteLayer writes a raster layer as a GeoTIFF at path.
func WriteLayer(path string, layer *raster.Layer) error {
	return raster.WriteLayer(path, layer)
}

// Run fits the stack, evaluates the fit against the observed data and
// synthesizes one predicted raster per future year. Years inside the
// observed range are permitted too.
func Run(stack *raster.Stack, futureYears []int, opts ...Option) (*Report, error) {
	result, err := regression.Fit(stack, opts...)
	if err != nil {
		return nil, err
	}

	metrics, err := result.Metrics(stack)
	if err != nil {
		return nil, err
	}
	robust, err := result.RobustShare(stack, RobustThreshold)
	if err != nil {
		return nil, err
	}

	predictions, err := result.Predict(futureYears)
	if err != nil {
		return nil, err
	}

	return &Report{
		Result:      result,
		Metrics:     metrics,
		RobustShare: robust,
		Predictions: predictions,
	}, nil
}
