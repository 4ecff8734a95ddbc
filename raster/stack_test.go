package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/firmanaf/ntlmodeling/errs"
)

func mustLayer(t *testing.T, year, w, h int, data []float64) *Layer {
	t.Helper()
	l, err := NewLayer(year, w, h, data)
	require.NoError(t, err)
	l.GeoTransform = [6]float64{110.0, 0.005, 0, -7.0, 0, -0.005}
	l.Projection = "EPSG:4326"

	return l
}

func TestNewStack(t *testing.T) {
	t.Run("sorts layers by year", func(t *testing.T) {
		l2021 := mustLayer(t, 2021, 2, 2, []float64{1, 2, 3, 4})
		l2019 := mustLayer(t, 2019, 2, 2, []float64{5, 6, 7, 8})
		l2020 := mustLayer(t, 2020, 2, 2, []float64{9, 10, 11, 12})

		stack, err := NewStack([]*Layer{l2021, l2019, l2020})
		require.NoError(t, err)
		require.Equal(t, []int{2019, 2020, 2021}, stack.Years())
		require.Equal(t, 2019, stack.Reference().Year)
	})

	t.Run("rejects fewer than two layers", func(t *testing.T) {
		l := mustLayer(t, 2020, 2, 2, []float64{1, 2, 3, 4})
		_, err := NewStack([]*Layer{l})
		require.ErrorIs(t, err, errs.ErrInsufficientData)
	})

	t.Run("rejects duplicate years", func(t *testing.T) {
		a := mustLayer(t, 2020, 2, 2, []float64{1, 2, 3, 4})
		b := mustLayer(t, 2020, 2, 2, []float64{5, 6, 7, 8})
		_, err := NewStack([]*Layer{a, b})
		require.ErrorIs(t, err, errs.ErrInsufficientData)
	})

	t.Run("rejects mismatched dimensions", func(t *testing.T) {
		a := mustLayer(t, 2019, 2, 2, []float64{1, 2, 3, 4})
		b := mustLayer(t, 2020, 3, 2, []float64{1, 2, 3, 4, 5, 6})
		_, err := NewStack([]*Layer{a, b})
		require.ErrorIs(t, err, errs.ErrAlignment)
	})

	t.Run("rejects mismatched geotransform", func(t *testing.T) {
		a := mustLayer(t, 2019, 2, 2, []float64{1, 2, 3, 4})
		b := mustLayer(t, 2020, 2, 2, []float64{1, 2, 3, 4})
		b.GeoTransform[1] = 0.01
		_, err := NewStack([]*Layer{a, b})
		require.ErrorIs(t, err, errs.ErrAlignment)
	})

	t.Run("rejects mismatched projection", func(t *testing.T) {
		a := mustLayer(t, 2019, 2, 2, []float64{1, 2, 3, 4})
		b := mustLayer(t, 2020, 2, 2, []float64{1, 2, 3, 4})
		b.Projection = "EPSG:3857"
		_, err := NewStack([]*Layer{a, b})
		require.ErrorIs(t, err, errs.ErrAlignment)
	})

	t.Run("non-contiguous years are fine", func(t *testing.T) {
		a := mustLayer(t, 2014, 1, 1, []float64{1})
		b := mustLayer(t, 2019, 1, 1, []float64{2})
		c := mustLayer(t, 2025, 1, 1, []float64{3})
		stack, err := NewStack([]*Layer{a, b, c})
		require.NoError(t, err)
		require.Equal(t, []int{2014, 2019, 2025}, stack.Years())
	})
}

func TestNormalize(t *testing.T) {
	t.Run("substitutes nodata and non-finite cells", func(t *testing.T) {
		nodata := -999.0
		a := mustLayer(t, 2019, 2, 2, []float64{1, -999, 3, math.NaN()})
		a.NoData = &nodata
		b := mustLayer(t, 2020, 2, 2, []float64{5, 6, math.Inf(1), 8})
		stack, err := NewStack([]*Layer{a, b})
		require.NoError(t, err)

		stack.Normalize(0)
		require.True(t, stack.Normalized())
		require.Equal(t, []float64{1, 0, 3, 0}, stack.Layer(0).Data)
		require.Equal(t, []float64{5, 6, 0, 8}, stack.Layer(1).Data)

		require.Equal(t, []bool{true, false, true, false}, stack.ValidityMask(0))
		require.Equal(t, []bool{true, true, false, true}, stack.ValidityMask(1))
		require.InDelta(t, 5.0/8.0, stack.ValidFraction(), 1e-15)
	})

	t.Run("supports configurable neutral value", func(t *testing.T) {
		nodata := -1.0
		a := mustLayer(t, 2019, 1, 2, []float64{-1, 4})
		a.NoData = &nodata
		b := mustLayer(t, 2020, 1, 2, []float64{2, 5})
		stack, err := NewStack([]*Layer{a, b})
		require.NoError(t, err)

		stack.Normalize(0.5)
		require.Equal(t, []float64{0.5, 4}, stack.Layer(0).Data)
		require.Equal(t, 0.5, stack.NeutralValue())
	})

	t.Run("is idempotent", func(t *testing.T) {
		a := mustLayer(t, 2019, 1, 1, []float64{1})
		b := mustLayer(t, 2020, 1, 1, []float64{2})
		stack, err := NewStack([]*Layer{a, b})
		require.NoError(t, err)

		stack.Normalize(0)
		stack.Normalize(42)
		require.Equal(t, 0.0, stack.NeutralValue())
	})
}

func TestNewOutputLayer(t *testing.T) {
	nodata := -3.4e38
	a := mustLayer(t, 2019, 3, 2, make([]float64, 6))
	a.NoData = &nodata
	b := mustLayer(t, 2020, 3, 2, make([]float64, 6))
	b.NoData = &nodata
	stack, err := NewStack([]*Layer{a, b})
	require.NoError(t, err)

	out := stack.NewOutputLayer(2030)
	require.Equal(t, 2030, out.Year)
	require.Equal(t, stack.Width(), out.Width)
	require.Equal(t, stack.Height(), out.Height)
	require.Equal(t, a.GeoTransform, out.GeoTransform)
	require.Equal(t, a.Projection, out.Projection)
	require.NotNil(t, out.NoData)
	require.Equal(t, nodata, *out.NoData)
	require.Len(t, out.Data, 6)
}
