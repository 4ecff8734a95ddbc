// Package compress provides the block codecs used by snapshot files.
//
// Snapshot payloads are little-endian float64 planes (regression
// coefficients and fallback values) plus small metadata sections.
// Coefficient planes for neighbouring pixels are highly correlated,
// so even fast codecs achieve useful ratios on real rasters.
//
// Four codecs are available, selected by format.CompressionType:
//
//   - None: passthrough, for debugging and already-compressed data
//   - Zstd: best ratio, preferred for archival snapshots
//   - S2:   fastest, preferred when snapshots are written per run
//   - LZ4:  balanced block compression
//
// All codecs are safe for concurrent use. Obtain one through
// GetCodec; the returned values are stateless or internally pooled.
package compress
