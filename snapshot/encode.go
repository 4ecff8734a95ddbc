package snapshot

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/firmanaf/ntlmodeling/compress"
	"github.com/firmanaf/ntlmodeling/errs"
	"github.com/firmanaf/ntlmodeling/format"
	"github.com/firmanaf/ntlmodeling/internal/options"
	"github.com/firmanaf/ntlmodeling/internal/pool"
	"github.com/firmanaf/ntlmodeling/regression"
)

// Encode serializes a fitted model collection into snapshot bytes.
func Encode(result *regression.FitResult, opts ...Option) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: nil fit result", errs.ErrEmptyResult)
	}

	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	codec, err := compress.CreateCodec(cfg.compression, "snapshot payload")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidConfig, err)
	}

	state := result.State()
	pixels := state.Width * state.Height
	terms := len(state.Planes)

	rawSize := terms*pixels*8 + (pixels+7)/8 + pixels*8
	raw, release := pool.GetByteSlice(rawSize)
	defer release()

	off := 0
	for _, plane := range state.Planes {
		for _, v := range plane {
			binary.LittleEndian.PutUint64(raw[off:], math.Float64bits(v))
			off += 8
		}
	}
	bitmapStart := off
	for i := bitmapStart; i < bitmapStart+(pixels+7)/8; i++ {
		raw[i] = 0
	}
	for p, d := range state.Degenerate {
		if d {
			raw[bitmapStart+p/8] |= 1 << (p % 8)
		}
	}
	off = bitmapStart + (pixels+7)/8
	for _, v := range state.Fallback {
		binary.LittleEndian.PutUint64(raw[off:], math.Float64bits(v))
		off += 8
	}

	payload, err := codec.Compress(raw[:rawSize])
	if err != nil {
		return nil, fmt.Errorf("compress snapshot payload: %w", err)
	}

	buf := make([]byte, 0, headerSize(state)+len(payload)+8)
	buf = appendHeader(buf, state, cfg.compression, uint32(len(payload)))
	buf = append(buf, payload...)
	buf = binary.LittleEndian.AppendUint64(buf, xxhash.Sum64(buf))

	return buf, nil
}

// Write encodes the result and writes the snapshot to w.
func Write(w io.Writer, result *regression.FitResult, opts ...Option) error {
	data, err := Encode(result, opts...)
	if err != nil {
		return err
	}
	_, err = w.Write(data)

	return err
}

// WriteFile encodes the result and writes the snapshot to path.
func WriteFile(path string, result *regression.FitResult, opts ...Option) error {
	data, err := Encode(result, opts...)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func headerSize(s *regression.ModelState) int {
	// Fixed fields plus the variable-length year list and projection.
	return 4 + 1 + 1 + 1 + 1 + 1 + 2 + 8*4 + 4 + 4 + 2 + 4*len(s.Years) + 6*8 + 2 + len(s.Projection) + 4
}

func appendHeader(buf []byte, s *regression.ModelState, ct format.CompressionType, payloadLen uint32) []byte {
	flags := uint8(0)
	if s.DegreeClamped {
		flags |= flagDegreeClamped
	}
	if s.Clamp {
		flags |= flagClampNonNeg
	}
	nodata := 0.0
	if s.NoData != nil {
		flags |= flagHasNoData
		nodata = *s.NoData
	}

	buf = append(buf, magic[:]...)
	buf = append(buf, formatVersion, uint8(ct), flags, uint8(s.Kind), uint8(s.Norm))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(s.Degree))
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(s.Alpha))
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(s.NormOffset))
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(s.NormScale))
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(nodata))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(s.Width))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(s.Height))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(s.Years)))
	for _, y := range s.Years {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(y)))
	}
	for _, g := range s.GeoTransform {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(g))
	}
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(s.Projection)))
	buf = append(buf, s.Projection...)
	buf = binary.LittleEndian.AppendUint32(buf, payloadLen)

	return buf
}
