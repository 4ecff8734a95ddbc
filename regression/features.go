package regression

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// featurizer maps a calendar year onto the model's feature row. The same
// instance is used at fit and prediction time so feature expansion stays
// consistent across both.
//
// The year is first scaled as (year - offset) / scale, then expanded into
// powers 0..degree. With NormNone offset is 0 and scale is 1.
type featurizer struct {
	degree int
	norm   Normalization
	offset float64
	scale  float64
}

// newFeaturizer derives scaling parameters from the observed years.
// Years are guaranteed distinct by the stack, so minmax and zscore scales
// are always positive.
func newFeaturizer(years []float64, degree int, norm Normalization) featurizer {
	f := featurizer{degree: degree, norm: norm, scale: 1}

	switch norm {
	case NormMinMax:
		lo := floats.Min(years)
		hi := floats.Max(years)
		f.offset = lo
		f.scale = hi - lo
	case NormZScore:
		mean := floats.Sum(years) / float64(len(years))
		variance := 0.0
		for _, y := range years {
			d := y - mean
			variance += d * d
		}
		f.offset = mean
		f.scale = math.Sqrt(variance / float64(len(years)))
	case NormNone:
	}

	return f
}

// terms returns the number of columns in the design matrix (degree + 1).
func (f featurizer) terms() int {
	return f.degree + 1
}

// expandInto fills row with the feature expansion of year.
// len(row) must equal f.terms().
func (f featurizer) expandInto(row []float64, year float64) {
	t := (year - f.offset) / f.scale
	pow := 1.0
	for j := range row {
		row[j] = pow
		pow *= t
	}
}

// designMatrix builds the shared row-major design matrix for the observed
// years, one row per year.
func (f featurizer) designMatrix(years []float64) []float64 {
	k := f.terms()
	m := make([]float64, len(years)*k)
	for i, y := range years {
		f.expandInto(m[i*k:(i+1)*k], y)
	}

	return m
}
