package regression

import "strings"

// ModelKind identifies the regression model family. The set is closed:
// forecasting behavior is selected by value, not by subclassing.
type ModelKind int

const (
	// ModelLinear is ordinary least squares of value on year.
	ModelLinear ModelKind = iota
	// ModelPolynomial is least squares on year powers 0..degree.
	ModelPolynomial
	// ModelRidge is L2-regularized least squares.
	ModelRidge
	// ModelLasso is L1-regularized least squares.
	ModelLasso
)

var modelKindNames = map[ModelKind]string{
	ModelLinear:     "linear",
	ModelPolynomial: "polynomial",
	ModelRidge:      "ridge",
	ModelLasso:      "lasso",
}

// String returns the lowercase name of the model kind.
func (k ModelKind) String() string {
	if name, ok := modelKindNames[k]; ok {
		return name
	}

	return "unknown"
}

// Valid reports whether k is one of the defined model kinds.
func (k ModelKind) Valid() bool {
	_, ok := modelKindNames[k]
	return ok
}

// ModelKindFromString returns the ModelKind for a given name.
// Returns ModelKind(-1) for unknown names.
func ModelKindFromString(name string) ModelKind {
	for kind, n := range modelKindNames {
		if n == strings.ToLower(name) {
			return kind
		}
	}

	return ModelKind(-1)
}

// Normalization identifies the scaling applied to the year feature before
// expansion into powers.
type Normalization int

const (
	// NormNone uses raw calendar years as features.
	NormNone Normalization = iota
	// NormMinMax maps the observed year range onto [0, 1].
	NormMinMax
	// NormZScore centers years on their mean and scales by their standard
	// deviation.
	NormZScore
)

var normalizationNames = map[Normalization]string{
	NormNone:   "none",
	NormMinMax: "minmax",
	NormZScore: "zscore",
}

// String returns the lowercase name of the normalization mode.
func (n Normalization) String() string {
	if name, ok := normalizationNames[n]; ok {
		return name
	}

	return "unknown"
}

// Valid reports whether n is one of the defined normalization modes.
func (n Normalization) Valid() bool {
	_, ok := normalizationNames[n]
	return ok
}

// NormalizationFromString returns the Normalization for a given name.
// Returns Normalization(-1) for unknown names.
func NormalizationFromString(name string) Normalization {
	for mode, n := range normalizationNames {
		if n == strings.ToLower(name) {
			return mode
		}
	}

	return Normalization(-1)
}
