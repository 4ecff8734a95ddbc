package regression

import (
	"fmt"
	"math"
	"runtime"

	"github.com/firmanaf/ntlmodeling/errs"
	"github.com/firmanaf/ntlmodeling/internal/options"
)

// Config holds the fitting configuration. Zero values are filled with
// defaults by Fit; use the With* options to override them.
type Config struct {
	// Kind selects the model family. Default: ModelLinear.
	Kind ModelKind
	// Degree is the polynomial degree, consulted only for ModelPolynomial.
	// Default: 2.
	Degree int
	// Alpha is the regularization strength, consulted only for ModelRidge
	// and ModelLasso. Must be >= 0. Default: 1.
	Alpha float64
	// Norm selects the year-feature normalization. Default: NormNone.
	Norm Normalization
	// Neutral is the substitution value for NoData cells. Default: 0.
	Neutral float64
	// BatchSize is the number of pixels solved per matrix operation.
	// Default: 4096.
	BatchSize int
	// Workers is the number of concurrent batch workers.
	// Default: runtime.GOMAXPROCS(0).
	Workers int
	// ClampNonNegative clips synthesized predictions at zero. Off by
	// default: large extrapolations are surfaced, not corrected.
	ClampNonNegative bool
	// LassoMaxIter bounds coordinate-descent sweeps per batch. Default: 1000.
	LassoMaxIter int
	// LassoTol is the coordinate-descent convergence tolerance on the
	// largest coefficient change in a sweep. Default: 1e-6.
	LassoTol float64
	// Progress, when non-nil, receives (pixelsDone, pixelsTotal) after each
	// finished batch. It may be invoked concurrently from worker goroutines.
	Progress func(done, total int)
}

// Option is a functional option for Config.
type Option = options.Option[*Config]

func defaultConfig() Config {
	return Config{
		Kind:         ModelLinear,
		Degree:       2,
		Alpha:        1.0,
		Norm:         NormNone,
		BatchSize:    4096,
		Workers:      runtime.GOMAXPROCS(0),
		LassoMaxIter: 1000,
		LassoTol:     1e-6,
	}
}

// validate fails fast on structurally invalid configuration, before any
// per-pixel work starts.
func (c *Config) validate() error {
	if !c.Kind.Valid() {
		return fmt.Errorf("%w: unknown model kind %d", errs.ErrInvalidConfig, c.Kind)
	}
	if !c.Norm.Valid() {
		return fmt.Errorf("%w: unknown normalization %d", errs.ErrInvalidConfig, c.Norm)
	}
	if c.Kind == ModelPolynomial && c.Degree < 1 {
		return fmt.Errorf("%w: polynomial degree must be >= 1, got %d", errs.ErrInvalidConfig, c.Degree)
	}
	if c.Kind == ModelRidge || c.Kind == ModelLasso {
		if c.Alpha < 0 || math.IsNaN(c.Alpha) || math.IsInf(c.Alpha, 0) {
			return fmt.Errorf("%w: alpha must be a finite value >= 0, got %g", errs.ErrInvalidConfig, c.Alpha)
		}
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("%w: batch size must be >= 1, got %d", errs.ErrInvalidConfig, c.BatchSize)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1, got %d", errs.ErrInvalidConfig, c.Workers)
	}
	if c.Kind == ModelLasso {
		if c.LassoMaxIter < 1 {
			return fmt.Errorf("%w: lasso max iterations must be >= 1, got %d", errs.ErrInvalidConfig, c.LassoMaxIter)
		}
		if c.LassoTol <= 0 {
			return fmt.Errorf("%w: lasso tolerance must be > 0, got %g", errs.ErrInvalidConfig, c.LassoTol)
		}
	}

	return nil
}

// WithModelKind selects the model family.
func WithModelKind(kind ModelKind) Option {
	return options.NoError(func(cfg *Config) {
		cfg.Kind = kind
	})
}

// WithDegree sets the polynomial degree (ignored unless the kind is
// ModelPolynomial).
func WithDegree(degree int) Option {
	return options.NoError(func(cfg *Config) {
		cfg.Degree = degree
	})
}

// WithAlpha sets the regularization strength for ridge and lasso.
func WithAlpha(alpha float64) Option {
	return options.NoError(func(cfg *Config) {
		cfg.Alpha = alpha
	})
}

// WithNormalization selects the year-feature normalization mode.
func WithNormalization(norm Normalization) Option {
	return options.NoError(func(cfg *Config) {
		cfg.Norm = norm
	})
}

// WithNeutralValue sets the NoData substitution value.
func WithNeutralValue(v float64) Option {
	return options.NoError(func(cfg *Config) {
		cfg.Neutral = v
	})
}

// WithBatchSize sets the number of pixels solved per matrix operation.
func WithBatchSize(size int) Option {
	return options.NoError(func(cfg *Config) {
		cfg.BatchSize = size
	})
}

// WithWorkers sets the number of concurrent batch workers.
func WithWorkers(n int) Option {
	return options.NoError(func(cfg *Config) {
		cfg.Workers = n
	})
}

// WithClampNonNegative clips synthesized predictions at zero.
func WithClampNonNegative() Option {
	return options.NoError(func(cfg *Config) {
		cfg.ClampNonNegative = true
	})
}

// WithLassoIterations sets the coordinate-descent iteration cap and
// convergence tolerance.
func WithLassoIterations(maxIter int, tol float64) Option {
	return options.NoError(func(cfg *Config) {
		cfg.LassoMaxIter = maxIter
		cfg.LassoTol = tol
	})
}

// WithProgress registers a progress callback invoked after each finished
// batch.
func WithProgress(fn func(done, total int)) Option {
	return options.NoError(func(cfg *Config) {
		cfg.Progress = fn
	})
}
