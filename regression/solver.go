package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/firmanaf/ntlmodeling/internal/pool"
)

// solver holds the matrices shared by every pixel batch. All pixels in a
// stack observe the same year set, so the expensive factorization work
// happens exactly once per run; per-batch work is a single matrix multiply
// (closed-form kinds) or a vectorized coordinate descent (lasso).
type solver struct {
	kind  ModelKind
	alpha float64
	n     int // observations (years)
	k     int // feature terms (degree + 1)

	x *mat.Dense // n×k design matrix

	// proj is the k×n projection matrix (XᵀX + αR)⁻¹Xᵀ for closed-form
	// kinds; nil for lasso.
	proj *mat.Dense

	// gram is the k×k Gram matrix XᵀX used by coordinate descent.
	gram    []float64
	maxIter int
	tol     float64
}

func newSolver(cfg *Config, design []float64, n, k int) (*solver, error) {
	s := &solver{
		kind:    cfg.Kind,
		alpha:   cfg.Alpha,
		n:       n,
		k:       k,
		x:       mat.NewDense(n, k, design),
		maxIter: cfg.LassoMaxIter,
		tol:     cfg.LassoTol,
	}

	var xtx mat.Dense
	xtx.Mul(s.x.T(), s.x)

	if s.kind == ModelLasso {
		s.gram = make([]float64, k*k)
		for j := range k {
			for m := range k {
				s.gram[j*k+m] = xtx.At(j, m)
			}
		}

		return s, nil
	}

	if s.kind == ModelRidge {
		// The intercept column is never penalized, matching the usual
		// ridge contract.
		for j := 1; j < k; j++ {
			xtx.Set(j, j, xtx.At(j, j)+s.alpha)
		}
	}

	proj, err := solveProjection(&xtx, s.x)
	if err != nil {
		return nil, err
	}
	s.proj = proj

	return s, nil
}

// solveProjection computes A⁻¹Xᵀ. A Vandermonde design over distinct years
// is full rank, but ill-conditioned raw-year polynomials can push LU past
// its limits; a tiny diagonal jitter is applied before giving up.
func solveProjection(a *mat.Dense, x *mat.Dense) (*mat.Dense, error) {
	var proj mat.Dense
	if err := proj.Solve(a, x.T()); err == nil {
		return &proj, nil
	}

	k, _ := a.Dims()
	for j := range k {
		a.Set(j, j, a.At(j, j)+1e-10)
	}
	if err := proj.Solve(a, x.T()); err != nil {
		return nil, fmt.Errorf("design matrix is numerically singular: %w", err)
	}

	return &proj, nil
}

// solveBatch fits pixels [lo, lo+batch) whose series are packed row-major in
// yb (n×batch) and writes the coefficients into the term-major planes.
func (s *solver) solveBatch(yb []float64, batch, lo int, planes [][]float64) {
	y := mat.NewDense(s.n, batch, yb)

	if s.kind == ModelLasso {
		s.descendBatch(y, batch, lo, planes)
		return
	}

	var c mat.Dense
	c.Mul(s.proj, y)
	for j := range s.k {
		copy(planes[j][lo:lo+batch], c.RawRowView(j))
	}
}

// descendBatch runs cyclic coordinate descent for the whole batch at once.
// The Gram matrix is shared; only the Xᵀy right-hand side differs per pixel,
// so each coordinate update is a vector operation across the batch.
//
// Objective per pixel: (1/2n)·‖y − Xw‖² + α·Σ|wⱼ| with the intercept term
// excluded from the penalty, which makes the soft threshold n·α in
// unnormalized sums.
func (s *solver) descendBatch(y *mat.Dense, batch, lo int, planes [][]float64) {
	k := s.k

	var xty mat.Dense
	xty.Mul(s.x.T(), y)

	b, cleanupB := pool.GetFloat64Slice(k * batch)
	defer cleanupB()
	for j := range k {
		copy(b[j*batch:(j+1)*batch], xty.RawRowView(j))
	}

	w, cleanupW := pool.GetFloat64Slice(k * batch)
	defer cleanupW()
	for i := range w {
		w[i] = 0
	}

	lambda := float64(s.n) * s.alpha

	for iter := 0; iter < s.maxIter; iter++ {
		maxDelta := 0.0
		for j := range k {
			gjj := s.gram[j*k+j]
			row := w[j*batch : (j+1)*batch]
			for t := range batch {
				rho := b[j*batch+t]
				for m := range k {
					if m != j {
						rho -= s.gram[j*k+m] * w[m*batch+t]
					}
				}

				var next float64
				if j == 0 {
					next = rho / gjj
				} else {
					next = softThreshold(rho, lambda) / gjj
				}

				if d := math.Abs(next - row[t]); d > maxDelta {
					maxDelta = d
				}
				row[t] = next
			}
		}
		if maxDelta < s.tol {
			break
		}
	}

	for j := range k {
		copy(planes[j][lo:lo+batch], w[j*batch:(j+1)*batch])
	}
}

func softThreshold(v, lambda float64) float64 {
	switch {
	case v > lambda:
		return v - lambda
	case v < -lambda:
		return v + lambda
	default:
		return 0
	}
}
