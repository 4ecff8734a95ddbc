package compress

// ZstdCompressor provides Zstandard compression for snapshot payloads.
//
// Zstd trades compression speed for ratio, which suits snapshots:
// they are written once per modeling run and read back many times.
// Coefficient planes compress particularly well because neighbouring
// pixels carry similar trends.
//
// Two implementations are provided. When cgo is available the libzstd
// binding is used; otherwise a pure Go implementation is selected so
// cross-compiled builds keep working.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
