package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/firmanaf/ntlmodeling/compress"
	"github.com/firmanaf/ntlmodeling/errs"
	"github.com/firmanaf/ntlmodeling/format"
	"github.com/firmanaf/ntlmodeling/regression"
)

// Decode parses snapshot bytes and restores the fitted model collection.
// The trailer checksum is verified before any field is trusted.
func Decode(data []byte) (*regression.FitResult, error) {
	if len(data) < len(magic)+8 {
		return nil, fmt.Errorf("%w: %d bytes is too short", errs.ErrInvalidSnapshot, len(data))
	}
	if !bytes.Equal(data[:4], magic[:]) {
		return nil, fmt.Errorf("%w: bad magic", errs.ErrInvalidSnapshot)
	}

	body := data[:len(data)-8]
	want := binary.LittleEndian.Uint64(data[len(data)-8:])
	if got := xxhash.Sum64(body); got != want {
		return nil, fmt.Errorf("%w: computed %016x, stored %016x", errs.ErrChecksumMismatch, got, want)
	}

	r := &reader{buf: body[4:]}

	version := r.u8()
	if version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidSnapshot, version)
	}
	ct := format.CompressionType(r.u8())
	flags := r.u8()

	s := &regression.ModelState{
		Kind:          regression.ModelKind(r.u8()),
		Norm:          regression.Normalization(r.u8()),
		Degree:        int(r.u16()),
		Alpha:         r.f64(),
		NormOffset:    r.f64(),
		NormScale:     r.f64(),
		DegreeClamped: flags&flagDegreeClamped != 0,
		Clamp:         flags&flagClampNonNeg != 0,
	}
	nodata := r.f64()
	if flags&flagHasNoData != 0 {
		s.NoData = &nodata
	}
	s.Width = int(r.u32())
	s.Height = int(r.u32())

	yearCount := int(r.u16())
	s.Years = make([]int, yearCount)
	for i := range s.Years {
		s.Years[i] = int(int32(r.u32()))
	}
	for i := range s.GeoTransform {
		s.GeoTransform[i] = r.f64()
	}
	s.Projection = string(r.bytes(int(r.u16())))
	payloadLen := int(r.u32())
	payload := r.bytes(payloadLen)
	if r.failed {
		return nil, fmt.Errorf("%w: truncated header", errs.ErrInvalidSnapshot)
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", errs.ErrInvalidSnapshot, r.remaining())
	}

	if !ct.Valid() {
		return nil, fmt.Errorf("%w: compression type %#02x", errs.ErrInvalidSnapshot, uint8(ct))
	}
	codec, err := compress.GetCodec(ct)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidSnapshot, err)
	}

	if s.Width <= 0 || s.Height <= 0 || s.Degree < 1 {
		return nil, fmt.Errorf("%w: grid %dx%d, degree %d", errs.ErrInvalidSnapshot, s.Width, s.Height, s.Degree)
	}
	pixels := s.Width * s.Height
	terms := s.Degree + 1
	bitmapLen := (pixels + 7) / 8
	rawSize := terms*pixels*8 + bitmapLen + pixels*8

	// The header tells us the exact decompressed size, so codecs whose
	// wire format does not store it (LZ4 blocks) can allocate once
	// instead of searching for a buffer that fits.
	var raw []byte
	if sized, ok := codec.(compress.SizedDecompressor); ok {
		raw, err = sized.DecompressSized(payload, rawSize)
	} else {
		raw, err = codec.Decompress(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %s", errs.ErrInvalidSnapshot, err)
	}
	if len(raw) != rawSize {
		return nil, fmt.Errorf("%w: payload is %d bytes, want %d",
			errs.ErrInvalidSnapshot, len(raw), rawSize)
	}

	pr := &reader{buf: raw}
	s.Planes = make([][]float64, terms)
	for j := range s.Planes {
		plane := make([]float64, pixels)
		for p := range plane {
			plane[p] = pr.f64()
		}
		s.Planes[j] = plane
	}
	bitmap := pr.bytes(bitmapLen)
	s.Degenerate = make([]bool, pixels)
	for p := range s.Degenerate {
		s.Degenerate[p] = bitmap[p/8]&(1<<(p%8)) != 0
	}
	s.Fallback = make([]float64, pixels)
	for p := range s.Fallback {
		s.Fallback[p] = pr.f64()
	}

	return regression.Restore(s)
}

// Read consumes r to the end and decodes the snapshot.
func Read(rd io.Reader) (*regression.FitResult, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	return Decode(data)
}

// ReadFile reads and decodes the snapshot at path.
func ReadFile(path string) (*regression.FitResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	return Decode(data)
}

// reader is a little-endian cursor that records overruns instead of
// panicking so the caller can fail once with a single error.
type reader struct {
	buf    []byte
	off    int
	failed bool
}

func (r *reader) remaining() int { return len(r.buf) - r.off }

func (r *reader) bytes(n int) []byte {
	if n < 0 || r.remaining() < n {
		r.failed = true
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n

	return b
}

func (r *reader) u8() uint8 {
	b := r.bytes(1)
	if b == nil {
		return 0
	}

	return b[0]
}

func (r *reader) u16() uint16 {
	b := r.bytes(2)
	if b == nil {
		return 0
	}

	return binary.LittleEndian.Uint16(b)
}

func (r *reader) u32() uint32 {
	b := r.bytes(4)
	if b == nil {
		return 0
	}

	return binary.LittleEndian.Uint32(b)
}

func (r *reader) f64() float64 {
	b := r.bytes(8)
	if b == nil {
		return 0
	}

	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}
