package raster

import (
	"fmt"
	"math"
	"slices"

	"github.com/firmanaf/ntlmodeling/errs"
)

// Stack is an ordered, aligned collection of layers sorted by year ascending.
//
// The stack owns the spatial metadata for the whole pipeline: every derived
// output (fitted models, predicted layers) inherits geometry from here.
// Years need not be contiguous, but must be distinct.
type Stack struct {
	layers []*Layer

	// validity[i][p] is true when cell p of layer i held an originally
	// valid value. Populated by Normalize; nil before that.
	validity [][]bool

	neutral    float64
	normalized bool
}

// NewStack validates and assembles a stack from the given layers.
//
// Layers are sorted by year. Fails with errs.ErrInsufficientData when fewer
// than two layers or duplicate years are given, and with errs.ErrAlignment
// when any layer disagrees with the first on grid geometry. The input slice
// is not retained.
func NewStack(layers []*Layer) (*Stack, error) {
	if len(layers) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 layers, got %d", errs.ErrInsufficientData, len(layers))
	}

	sorted := slices.Clone(layers)
	slices.SortFunc(sorted, func(a, b *Layer) int { return a.Year - b.Year })

	ref := sorted[0]
	for _, l := range sorted[1:] {
		if ok, detail := ref.sameGeometry(l); !ok {
			return nil, fmt.Errorf("%w: layer %d vs layer %d: %s", errs.ErrAlignment, ref.Year, l.Year, detail)
		}
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Year == sorted[i-1].Year {
			return nil, fmt.Errorf("%w: duplicate year %d", errs.ErrInsufficientData, sorted[i].Year)
		}
	}

	return &Stack{layers: sorted}, nil
}

// Len returns the number of layers in the stack.
func (s *Stack) Len() int {
	return len(s.layers)
}

// Layers returns the stack's layers in year order.
func (s *Stack) Layers() []*Layer {
	return s.layers
}

// Layer returns the i-th layer in year order.
func (s *Stack) Layer(i int) *Layer {
	return s.layers[i]
}

// Years returns the observed years in ascending order.
func (s *Stack) Years() []int {
	years := make([]int, len(s.layers))
	for i, l := range s.layers {
		years[i] = l.Year
	}

	return years
}

// Width returns the grid width shared by all layers.
func (s *Stack) Width() int { return s.layers[0].Width }

// Height returns the grid height shared by all layers.
func (s *Stack) Height() int { return s.layers[0].Height }

// Pixels returns the cell count of one layer.
func (s *Stack) Pixels() int { return s.layers[0].Pixels() }

// Reference returns the layer whose metadata derived outputs inherit.
func (s *Stack) Reference() *Layer { return s.layers[0] }

// NewOutputLayer returns a zero-filled layer for the given year carrying the
// stack's exact spatial metadata.
func (s *Stack) NewOutputLayer(year int) *Layer {
	return s.layers[0].EmptyLike(year)
}

// Normalize substitutes NoData and non-finite cells with the neutral value
// and records per-layer validity masks. Substituted cells keep participating
// in regression as neutral-valued observations; nothing is excluded.
//
// Normalize mutates layer data in place and is idempotent. A second call
// with a different neutral value is a no-op.
func (s *Stack) Normalize(neutral float64) {
	if s.normalized {
		return
	}
	s.neutral = neutral
	s.validity = make([][]bool, len(s.layers))

	for i, l := range s.layers {
		mask := make([]bool, len(l.Data))
		for p, v := range l.Data {
			valid := !math.IsNaN(v) && !math.IsInf(v, 0)
			if valid && l.NoData != nil && v == *l.NoData {
				valid = false
			}
			mask[p] = valid
			if !valid {
				l.Data[p] = neutral
			}
		}
		s.validity[i] = mask
	}
	s.normalized = true
}

// Normalized reports whether Normalize has run.
func (s *Stack) Normalized() bool { return s.normalized }

// NeutralValue returns the substitution value used by Normalize.
func (s *Stack) NeutralValue() float64 { return s.neutral }

// ValidityMask returns the validity mask of layer i (true = originally
// valid), or nil when the stack has not been normalized.
func (s *Stack) ValidityMask(i int) []bool {
	if s.validity == nil {
		return nil
	}

	return s.validity[i]
}

// ValidFraction returns the fraction of cells across all layers that held
// originally valid values, or 1 when the stack has not been normalized.
func (s *Stack) ValidFraction() float64 {
	if s.validity == nil {
		return 1
	}
	valid, total := 0, 0
	for _, mask := range s.validity {
		for _, ok := range mask {
			if ok {
				valid++
			}
		}
		total += len(mask)
	}
	if total == 0 {
		return 1
	}

	return float64(valid) / float64(total)
}
