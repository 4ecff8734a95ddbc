package regression

import (
	"fmt"

	"github.com/firmanaf/ntlmodeling/errs"
	"github.com/firmanaf/ntlmodeling/raster"
)

// FitResult is the fitted model collection for a whole pixel grid.
//
// Coefficients are stored as term-major planes: planes[j][p] is the j-th
// coefficient of pixel p. Degenerate pixels carry a constant fallback (the
// last observed value) that overrides the solved coefficients.
type FitResult struct {
	// Kind is the fitted model family.
	Kind ModelKind
	// Degree is the effective polynomial degree after clamping.
	Degree int
	// DegreeClamped reports whether the requested degree exceeded the
	// series length and was reduced to len(years)-1.
	DegreeClamped bool
	// Alpha is the regularization strength used (ridge/lasso only).
	Alpha float64
	// Norm is the year-feature normalization used.
	Norm Normalization
	// DegenerateCount is the number of pixels that fell back to constant
	// prediction.
	DegenerateCount int

	feat       featurizer
	years      []int
	width      int
	height     int
	clamp      bool
	planes     [][]float64
	degenerate []bool
	fallback   []float64
	ref        *raster.Layer
}

// Years returns the observed years the models were fitted on.
func (r *FitResult) Years() []int { return r.years }

// Width returns the grid width.
func (r *FitResult) Width() int { return r.width }

// Height returns the grid height.
func (r *FitResult) Height() int { return r.height }

// Pixels returns the number of fitted pixel models.
func (r *FitResult) Pixels() int { return r.width * r.height }

// evaluate computes pixel p's prediction for a pre-expanded feature row.
func (r *FitResult) evaluate(p int, row []float64) float64 {
	if r.degenerate[p] {
		return r.fallback[p]
	}
	v := 0.0
	for j, f := range row {
		v += r.planes[j][p] * f
	}

	return v
}

// PredictYear synthesizes the predicted raster for a single year. The output
// inherits the source stack's width, height, geotransform and coordinate
// reference exactly.
func (r *FitResult) PredictYear(year int) *raster.Layer {
	row := make([]float64, r.feat.terms())
	r.feat.expandInto(row, float64(year))

	out := r.ref.EmptyLike(year)
	for p := range out.Data {
		v := r.evaluate(p, row)
		if r.clamp && v < 0 {
			v = 0
		}
		out.Data[p] = v
	}

	return out
}

// Predict synthesizes one predicted raster per requested year. Extrapolation
// beyond the observed range is the intended use; years inside the range are
// permitted too.
func (r *FitResult) Predict(years []int) (map[int]*raster.Layer, error) {
	if len(years) == 0 {
		return nil, fmt.Errorf("%w: no prediction years given", errs.ErrInvalidConfig)
	}

	out := make(map[int]*raster.Layer, len(years))
	for _, y := range years {
		out[y] = r.PredictYear(y)
	}

	return out, nil
}

// PixelModel is the fitted model of a single pixel, detached from the grid.
type PixelModel struct {
	// Kind is the model family.
	Kind ModelKind
	// Coefficients are the fitted parameters, constant term first. Nil for
	// degenerate pixels.
	Coefficients []float64
	// Degenerate reports whether this pixel fell back to constant
	// prediction.
	Degenerate bool

	fallback float64
	feat     featurizer
}

// Predict evaluates the pixel's model at the given year, applying the same
// feature expansion used at fit time.
func (m PixelModel) Predict(year int) float64 {
	if m.Degenerate {
		return m.fallback
	}

	row := make([]float64, m.feat.terms())
	m.feat.expandInto(row, float64(year))
	v := 0.0
	for j, f := range row {
		v += m.Coefficients[j] * f
	}

	return v
}

// PixelModel returns the fitted model of pixel (row, col).
func (r *FitResult) PixelModel(row, col int) (PixelModel, error) {
	if row < 0 || row >= r.height || col < 0 || col >= r.width {
		return PixelModel{}, fmt.Errorf("pixel (%d,%d) out of %dx%d grid", row, col, r.width, r.height)
	}
	p := row*r.width + col

	m := PixelModel{
		Kind:       r.Kind,
		Degenerate: r.degenerate[p],
		fallback:   r.fallback[p],
		feat:       r.feat,
	}
	if !m.Degenerate {
		m.Coefficients = make([]float64, len(r.planes))
		for j := range r.planes {
			m.Coefficients[j] = r.planes[j][p]
		}
	}

	return m, nil
}

// fittedRows pre-expands the feature rows of all observed years.
func (r *FitResult) fittedRows() [][]float64 {
	rows := make([][]float64, len(r.years))
	for i, y := range r.years {
		rows[i] = make([]float64, r.feat.terms())
		r.feat.expandInto(rows[i], float64(y))
	}

	return rows
}

// checkStack verifies that a stack matches the fitted grid before comparing
// observed and fitted values.
func (r *FitResult) checkStack(stack *raster.Stack) error {
	if stack == nil || stack.Pixels() == 0 {
		return fmt.Errorf("%w: no stack", errs.ErrEmptyResult)
	}
	if stack.Width() != r.width || stack.Height() != r.height || stack.Len() != len(r.years) {
		return fmt.Errorf("%w: stack %dx%dx%d does not match fitted grid %dx%dx%d",
			errs.ErrAlignment, stack.Len(), stack.Height(), stack.Width(), len(r.years), r.height, r.width)
	}

	return nil
}
