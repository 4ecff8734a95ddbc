package regression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/firmanaf/ntlmodeling/errs"
)

func validState() *ModelState {
	pixels := 6
	planes := make([][]float64, 2)
	for j := range planes {
		planes[j] = make([]float64, pixels)
	}

	return &ModelState{
		Kind:       ModelLinear,
		Degree:     1,
		Norm:       NormNone,
		NormScale:  1,
		Years:      []int{2020, 2021, 2022},
		Width:      3,
		Height:     2,
		Planes:     planes,
		Degenerate: make([]bool, pixels),
		Fallback:   make([]float64, pixels),
	}
}

func TestRestoreValidState(t *testing.T) {
	r, err := Restore(validState())
	require.NoError(t, err)
	require.Equal(t, ModelLinear, r.Kind)
	require.Equal(t, 3, r.Width())
	require.Equal(t, 2, r.Height())
	require.NotNil(t, r.PredictYear(2025))
}

func TestRestoreRejectsBadState(t *testing.T) {
	cases := map[string]func(*ModelState){
		"bad kind":       func(s *ModelState) { s.Kind = ModelKind(99) },
		"bad norm":       func(s *ModelState) { s.Norm = Normalization(99) },
		"zero width":     func(s *ModelState) { s.Width = 0 },
		"zero degree":    func(s *ModelState) { s.Degree = 0 },
		"zero scale":     func(s *ModelState) { s.NormScale = 0 },
		"one year":       func(s *ModelState) { s.Years = []int{2020} },
		"missing plane":  func(s *ModelState) { s.Planes = s.Planes[:1] },
		"short plane":    func(s *ModelState) { s.Planes[0] = s.Planes[0][:2] },
		"short fallback": func(s *ModelState) { s.Fallback = s.Fallback[:1] },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := validState()
			mutate(s)
			_, err := Restore(s)
			require.ErrorIs(t, err, errs.ErrInvalidSnapshot)
		})
	}

	_, err := Restore(nil)
	require.ErrorIs(t, err, errs.ErrInvalidSnapshot)
}

func TestStateRoundTripThroughRestore(t *testing.T) {
	base := make([]float64, 12)
	slope := make([]float64, 12)
	for p := range base {
		base[p] = 5 + float64(p)
		slope[p] = 0.5 + 0.1*float64(p%3)
	}
	stack := linearStack(t, 4, 3, []int{2019, 2020, 2021, 2022}, base, slope)
	fitted, err := Fit(stack, WithModelKind(ModelPolynomial), WithDegree(2), WithNormalization(NormMinMax))
	require.NoError(t, err)

	restored, err := Restore(fitted.State())
	require.NoError(t, err)

	require.Equal(t, fitted.PredictYear(2026).Data, restored.PredictYear(2026).Data)

	m1, err := fitted.PixelModel(1, 2)
	require.NoError(t, err)
	m2, err := restored.PixelModel(1, 2)
	require.NoError(t, err)
	require.Equal(t, m1.Coefficients, m2.Coefficients)
}
