package regression

import (
	"fmt"

	"github.com/firmanaf/ntlmodeling/errs"
	"github.com/firmanaf/ntlmodeling/raster"
)

// ModelState is the complete serializable state of a FitResult. It carries
// everything needed to reproduce predictions bit-exactly on another machine,
// including the feature scaling parameters and the spatial metadata of the
// source grid.
type ModelState struct {
	Kind          ModelKind
	Degree        int
	DegreeClamped bool
	Alpha         float64
	Norm          Normalization
	NormOffset    float64
	NormScale     float64
	Clamp         bool

	Years  []int
	Width  int
	Height int

	GeoTransform [6]float64
	Projection   string
	NoData       *float64

	// Planes are term-major coefficient planes, constant term first.
	Planes [][]float64
	// Degenerate flags pixels that fell back to constant prediction.
	Degenerate []bool
	// Fallback holds the constant prediction of each pixel.
	Fallback []float64
}

// State captures the result's full state for serialization. The returned
// slices alias the result's internal storage and must not be modified.
func (r *FitResult) State() *ModelState {
	s := &ModelState{
		Kind:          r.Kind,
		Degree:        r.Degree,
		DegreeClamped: r.DegreeClamped,
		Alpha:         r.Alpha,
		Norm:          r.Norm,
		NormOffset:    r.feat.offset,
		NormScale:     r.feat.scale,
		Clamp:         r.clamp,
		Years:         r.years,
		Width:         r.width,
		Height:        r.height,
		GeoTransform:  r.ref.GeoTransform,
		Projection:    r.ref.Projection,
		Planes:        r.planes,
		Degenerate:    r.degenerate,
		Fallback:      r.fallback,
	}
	if r.ref.NoData != nil {
		nd := *r.ref.NoData
		s.NoData = &nd
	}

	return s
}

// Restore rebuilds a FitResult from previously captured state. The state is
// validated for internal consistency before any prediction is possible.
func Restore(s *ModelState) (*FitResult, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil model state", errs.ErrInvalidSnapshot)
	}
	if !s.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown model kind %d", errs.ErrInvalidSnapshot, int(s.Kind))
	}
	if !s.Norm.Valid() {
		return nil, fmt.Errorf("%w: unknown normalization %d", errs.ErrInvalidSnapshot, int(s.Norm))
	}
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid grid %dx%d", errs.ErrInvalidSnapshot, s.Width, s.Height)
	}
	if s.Degree < 1 {
		return nil, fmt.Errorf("%w: invalid degree %d", errs.ErrInvalidSnapshot, s.Degree)
	}
	if s.NormScale == 0 {
		return nil, fmt.Errorf("%w: zero feature scale", errs.ErrInvalidSnapshot)
	}
	if len(s.Years) < 2 {
		return nil, fmt.Errorf("%w: %d observed years", errs.ErrInvalidSnapshot, len(s.Years))
	}

	pixels := s.Width * s.Height
	if len(s.Planes) != s.Degree+1 {
		return nil, fmt.Errorf("%w: %d coefficient planes for degree %d", errs.ErrInvalidSnapshot, len(s.Planes), s.Degree)
	}
	for j, plane := range s.Planes {
		if len(plane) != pixels {
			return nil, fmt.Errorf("%w: plane %d has %d values, want %d", errs.ErrInvalidSnapshot, j, len(plane), pixels)
		}
	}
	if len(s.Degenerate) != pixels || len(s.Fallback) != pixels {
		return nil, fmt.Errorf("%w: pixel flag planes do not match grid", errs.ErrInvalidSnapshot)
	}

	count := 0
	for _, d := range s.Degenerate {
		if d {
			count++
		}
	}

	ref := &raster.Layer{
		Year:         s.Years[len(s.Years)-1],
		Width:        s.Width,
		Height:       s.Height,
		GeoTransform: s.GeoTransform,
		Projection:   s.Projection,
	}
	if s.NoData != nil {
		nd := *s.NoData
		ref.NoData = &nd
	}

	return &FitResult{
		Kind:            s.Kind,
		Degree:          s.Degree,
		DegreeClamped:   s.DegreeClamped,
		Alpha:           s.Alpha,
		Norm:            s.Norm,
		DegenerateCount: count,
		feat: featurizer{
			degree: s.Degree,
			norm:   s.Norm,
			offset: s.NormOffset,
			scale:  s.NormScale,
		},
		years:      s.Years,
		width:      s.Width,
		height:     s.Height,
		clamp:      s.Clamp,
		planes:     s.Planes,
		degenerate: s.Degenerate,
		fallback:   s.Fallback,
		ref:        ref,
	}, nil
}
