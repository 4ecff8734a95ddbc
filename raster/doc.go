// Package raster provides the georeferenced grid types consumed by the
// regression engine: single-band layers, aligned multi-year stacks, NoData
// normalization, and GeoTIFF input/output.
//
// A Layer is one observed year of nighttime-light intensity. A Stack is an
// ordered, geometrically aligned collection of layers sorted by year; it is
// the single source of truth for spatial metadata. Stacks are validated at
// construction: mismatched grid geometry or fewer than two distinct years is
// a structural error, never silently repaired.
//
// # NoData policy
//
// Normalize substitutes NoData and non-finite cells with a neutral value
// (zero by default) instead of excluding them, and records per-layer validity
// masks. Substitution keeps every pixel series at full length, which the
// batched solver relies on, but biases fits toward the neutral value near
// scene edges. The masks are exposed so callers can implement exclusion-based
// fitting without changing the default policy.
package raster
