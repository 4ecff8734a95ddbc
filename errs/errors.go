// Package errs defines sentinel error values shared across the module.
//
// Callers are expected to wrap these with fmt.Errorf("%w: detail", ...) so
// that errors.Is keeps working while messages stay descriptive.
package errs

import "errors"

var (
	// ErrAlignment indicates that input rasters disagree on grid geometry
	// (dimensions, geotransform or coordinate reference). Structural: the
	// whole run must abort, no partial output is valid.
	ErrAlignment = errors.New("raster alignment mismatch")

	// ErrInsufficientData indicates the stack cannot support regression,
	// e.g. fewer than two layers or duplicated years.
	ErrInsufficientData = errors.New("insufficient input data")

	// ErrInvalidConfig indicates an invalid engine configuration such as a
	// negative regularization strength or a polynomial degree below 1.
	// Raised before any per-pixel work starts.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyResult indicates an operation was asked to aggregate over an
	// empty fit result or stack. This is a programming-contract violation,
	// not an expected runtime condition.
	ErrEmptyResult = errors.New("empty result")

	// ErrInvalidSnapshot indicates a model snapshot blob is malformed,
	// truncated, or of an unsupported version.
	ErrInvalidSnapshot = errors.New("invalid model snapshot")

	// ErrChecksumMismatch indicates a model snapshot failed checksum
	// verification.
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")
)
