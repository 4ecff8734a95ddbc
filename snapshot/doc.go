// Package snapshot persists fitted model collections to a compact
// binary format so predictions can be re-run without refitting.
//
// A snapshot file has three parts:
//
//	header  - magic, version, model and grid metadata (uncompressed)
//	payload - coefficient planes, degenerate bitmap, fallback plane,
//	          compressed with the codec named in the header
//	trailer - xxHash64 checksum of header and payload
//
// All integers and floats are little-endian. The payload stores
// coefficient planes term-major, matching the in-memory layout of a
// fitted result, so restoring a snapshot reproduces predictions
// bit-exactly.
//
//	f, _ := os.Create("model.ntls")
//	err := snapshot.Write(f, result, snapshot.WithCompression(format.CompressionZstd))
//
//	f, _ = os.Open("model.ntls")
//	result, err := snapshot.Read(f)
package snapshot
