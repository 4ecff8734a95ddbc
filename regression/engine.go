package regression

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/firmanaf/ntlmodeling/errs"
	"github.com/firmanaf/ntlmodeling/internal/options"
	"github.com/firmanaf/ntlmodeling/internal/pool"
	"github.com/firmanaf/ntlmodeling/raster"
)

// Fit fits the configured model independently to every pixel's
// intensity-vs-year series and returns the fitted collection.
//
// The stack is normalized first (NoData cells substituted with the neutral
// value) unless the caller already did so. Configuration errors surface here,
// before any per-pixel work; per-pixel degeneracies never fail the run.
func Fit(stack *raster.Stack, opts ...Option) (*FitResult, error) {
	if stack == nil || stack.Pixels() == 0 {
		return nil, fmt.Errorf("%w: no stack to fit", errs.ErrEmptyResult)
	}

	cfg := defaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !stack.Normalized() {
		stack.Normalize(cfg.Neutral)
	}

	years := stack.Years()
	n := len(years)
	yearsF := make([]float64, n)
	for i, y := range years {
		yearsF[i] = float64(y)
	}

	// Non-polynomial kinds fit a straight line; polynomial degree is
	// clamped so the system never has more unknowns than observations.
	degree := 1
	if cfg.Kind == ModelPolynomial {
		degree = cfg.Degree
	}
	clamped := false
	if degree > n-1 {
		degree = n - 1
		clamped = true
	}

	feat := newFeaturizer(yearsF, degree, cfg.Norm)
	sol, err := newSolver(&cfg, feat.designMatrix(yearsF), n, feat.terms())
	if err != nil {
		return nil, err
	}

	pixels := stack.Pixels()
	k := feat.terms()
	planes := make([][]float64, k)
	for j := range planes {
		planes[j] = make([]float64, pixels)
	}
	degenerate := make([]bool, pixels)
	fallback := make([]float64, pixels)
	copy(fallback, stack.Layer(n-1).Data)

	layers := stack.Layers()

	type span struct{ lo, hi int }
	numBatches := (pixels + cfg.BatchSize - 1) / cfg.BatchSize
	jobs := make(chan span, numBatches)
	for lo := 0; lo < pixels; lo += cfg.BatchSize {
		jobs <- span{lo, min(lo+cfg.BatchSize, pixels)}
	}
	close(jobs)

	// Workers own disjoint batch ranges of the pre-allocated planes, so
	// writes need no synchronization.
	workers := min(cfg.Workers, numBatches)
	var wg sync.WaitGroup
	var done atomic.Int64

	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for jb := range jobs {
				batch := jb.hi - jb.lo
				yb, cleanup := pool.GetFloat64Slice(n * batch)
				for i, layer := range layers {
					copy(yb[i*batch:(i+1)*batch], layer.Data[jb.lo:jb.hi])
				}

				// Zero-variance series cannot support a unique fit;
				// flag them for the constant fallback.
				for t := range batch {
					lov, hiv := yb[t], yb[t]
					for i := 1; i < n; i++ {
						v := yb[i*batch+t]
						if v < lov {
							lov = v
						}
						if v > hiv {
							hiv = v
						}
					}
					if lov == hiv {
						degenerate[jb.lo+t] = true
					}
				}

				sol.solveBatch(yb, batch, jb.lo, planes)
				cleanup()

				if cfg.Progress != nil {
					cfg.Progress(int(done.Add(int64(batch))), pixels)
				}
			}
		}()
	}
	wg.Wait()

	degCount := 0
	for _, d := range degenerate {
		if d {
			degCount++
		}
	}

	return &FitResult{
		Kind:            cfg.Kind,
		Degree:          degree,
		DegreeClamped:   clamped,
		Alpha:           cfg.Alpha,
		Norm:            cfg.Norm,
		DegenerateCount: degCount,
		feat:            feat,
		years:           years,
		width:           stack.Width(),
		height:          stack.Height(),
		clamp:           cfg.ClampNonNegative,
		planes:          planes,
		degenerate:      degenerate,
		fallback:        fallback,
		ref:             stack.Reference(),
	}, nil
}
