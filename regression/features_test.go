package regression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeaturizer(t *testing.T) {
	years := []float64{2014, 2016, 2020}

	t.Run("none keeps raw years", func(t *testing.T) {
		f := newFeaturizer(years, 2, NormNone)
		row := make([]float64, f.terms())
		f.expandInto(row, 2016)
		require.Equal(t, []float64{1, 2016, 2016 * 2016}, row)
	})

	t.Run("minmax maps observed range onto unit interval", func(t *testing.T) {
		f := newFeaturizer(years, 1, NormMinMax)
		row := make([]float64, 2)

		f.expandInto(row, 2014)
		require.Equal(t, 0.0, row[1])

		f.expandInto(row, 2020)
		require.Equal(t, 1.0, row[1])

		f.expandInto(row, 2017)
		require.InDelta(t, 0.5, row[1], 1e-15)
	})

	t.Run("zscore centers on mean", func(t *testing.T) {
		f := newFeaturizer(years, 1, NormZScore)
		row := make([]float64, 2)

		mean := (2014.0 + 2016.0 + 2020.0) / 3.0
		f.expandInto(row, mean)
		require.InDelta(t, 0.0, row[1], 1e-12)

		// Scaled features of the observed years have unit variance.
		sum := 0.0
		for _, y := range years {
			f.expandInto(row, y)
			sum += row[1] * row[1]
		}
		require.InDelta(t, 1.0, sum/3.0, 1e-12)
	})

	t.Run("powers expand from the scaled value", func(t *testing.T) {
		f := newFeaturizer(years, 3, NormMinMax)
		row := make([]float64, 4)
		f.expandInto(row, 2017)

		x := 0.5
		require.InDelta(t, 1, row[0], 1e-15)
		require.InDelta(t, x, row[1], 1e-15)
		require.InDelta(t, x*x, row[2], 1e-15)
		require.InDelta(t, x*x*x, row[3], 1e-15)
	})

	t.Run("design matrix has one row per year", func(t *testing.T) {
		f := newFeaturizer(years, 1, NormNone)
		m := f.designMatrix(years)
		require.Len(t, m, len(years)*2)
		for i, y := range years {
			require.Equal(t, 1.0, m[i*2])
			require.Equal(t, y, m[i*2+1])
		}
	})

	t.Run("raw polynomial features stay finite", func(t *testing.T) {
		f := newFeaturizer(years, 6, NormNone)
		row := make([]float64, 7)
		f.expandInto(row, 2025)
		for _, v := range row {
			require.False(t, math.IsInf(v, 0))
		}
	})
}
