// Package regression implements the per-pixel time-series forecasting engine.
//
// Given an aligned multi-year raster stack, Fit solves one small regression
// per pixel — intensity against observation year — for every pixel in the
// grid, and returns a FitResult that can synthesize rasters for future years,
// aggregate global fit metrics, and extract diagnostic samples.
//
// # Model families
//
// The model set is closed and selected at runtime:
//
//   - Linear: ordinary least squares of value on year
//   - Polynomial: least squares on year powers 0..degree
//   - Ridge: L2-regularized least squares (intercept unpenalized)
//   - Lasso: L1-regularized least squares via coordinate descent
//
// All four share an optional normalization of the year feature (min-max or
// z-score) applied before expansion, which keeps polynomial design matrices
// well conditioned when raw calendar years are used as features.
//
// # Batched solving
//
// Fitting millions of independent 2-to-15-sample regressions one pixel at a
// time is prohibitively slow. Because every pixel shares the stack's year
// set, the solver computes the projection matrix (XᵀX + αR)⁻¹Xᵀ once and
// applies it to pixel batches as a single matrix multiply; Lasso runs
// coordinate descent vectorized across each batch against the shared Gram
// matrix. Batches are distributed over a worker pool, each worker writing a
// disjoint range of pre-allocated coefficient planes, so no locking is
// needed. Memory stays bounded by O(stack size × batch size).
//
// # Degenerate pixels
//
// A pixel whose series has zero variance cannot support a unique fit. Such
// pixels are flagged and fall back to constant prediction (the last observed
// value); they never abort the run. The aggregate count is reported on the
// result.
//
// # Basic usage
//
//	stack, _ := raster.NewStack(layers)
//	result, err := regression.Fit(stack,
//	    regression.WithModelKind(regression.ModelRidge),
//	    regression.WithAlpha(0.5),
//	    regression.WithNormalization(regression.NormZScore),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	predicted, _ := result.Predict([]int{2028, 2033})
//	metrics, _ := result.Metrics(stack)
package regression
