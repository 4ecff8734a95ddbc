// Package pool provides pooled scratch buffers reused across pixel batches.
//
// The regression engine solves pixel batches in a tight loop; pooling the
// per-batch matrices keeps the steady-state allocation rate near zero.
package pool

import "sync"

var (
	float64SlicePool = sync.Pool{
		New: func() any { return &[]float64{} },
	}
	byteSlicePool = sync.Pool{
		New: func() any { return &[]byte{} },
	}
)

// GetFloat64Slice retrieves a float64 slice of exactly the requested length
// from the pool. The cleanup function must be called (typically with defer)
// to return the slice; the slice must not be used afterwards.
//
// The returned slice is not zeroed: callers that rely on zero values must
// clear it themselves.
func GetFloat64Slice(size int) ([]float64, func()) {
	ptr, _ := float64SlicePool.Get().(*[]float64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]float64, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { float64SlicePool.Put(ptr) }
}

// GetByteSlice retrieves a byte slice of exactly the requested length from
// the pool, with the same contract as GetFloat64Slice.
func GetByteSlice(size int) ([]byte, func()) {
	ptr, _ := byteSlicePool.Get().(*[]byte)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]byte, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { byteSlicePool.Put(ptr) }
}
