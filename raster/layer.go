package raster

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// Layer is a single-band georeferenced grid for one observed year.
//
// Data is row-major with length Width*Height. Layers are treated as
// immutable once placed in a Stack; Normalize works on stack-owned copies.
type Layer struct {
	// Year is the observation year of this layer.
	Year int
	// Width and Height are the grid dimensions in pixels.
	Width  int
	Height int
	// Data holds cell values in row-major order, length Width*Height.
	Data []float64
	// GeoTransform is the GDAL-style affine transform
	// (originX, pixelWidth, rowRotation, originY, colRotation, pixelHeight).
	GeoTransform [6]float64
	// Projection is the coordinate reference system in WKT form.
	Projection string
	// NoData is the sentinel marking invalid cells, nil when the source
	// declares none.
	NoData *float64
}

// NewLayer creates a layer and validates that data matches the grid size.
func NewLayer(year, width, height int, data []float64) (*Layer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("data length %d does not match grid %dx%d", len(data), width, height)
	}

	return &Layer{Year: year, Width: width, Height: height, Data: data}, nil
}

// At returns the value at (row, col). Callers are responsible for bounds.
func (l *Layer) At(row, col int) float64 {
	return l.Data[row*l.Width+col]
}

// Pixels returns the number of cells in the grid.
func (l *Layer) Pixels() int {
	return l.Width * l.Height
}

// Fingerprint returns a 64-bit content hash of the grid values. Two layers
// with identical data produce identical fingerprints; FindDuplicate relies
// on this to flag accidentally duplicated inputs at load time.
func (l *Layer) Fingerprint() uint64 {
	if len(l.Data) == 0 {
		return 0
	}
	bytes := unsafe.Slice((*byte)(unsafe.Pointer(&l.Data[0])), len(l.Data)*8)

	return xxhash.Sum64(bytes)
}

// FindDuplicate returns the indices of the first pair of layers carrying
// identical pixel data, detected by fingerprint. Loading the same file
// twice under different year names is an acquisition mistake that would
// otherwise silently skew every fit.
func FindDuplicate(layers []*Layer) (int, int, bool) {
	seen := make(map[uint64]int, len(layers))
	for i, l := range layers {
		fp := l.Fingerprint()
		if j, ok := seen[fp]; ok {
			return j, i, true
		}
		seen[fp] = i
	}

	return 0, 0, false
}

// sameGeometry reports whether two layers agree on grid geometry and
// coordinate reference. Geotransform components are compared with a small
// absolute tolerance to absorb WKT round-trip noise; dimensions and
// projection must match exactly.
func (l *Layer) sameGeometry(other *Layer) (bool, string) {
	if l.Width != other.Width || l.Height != other.Height {
		return false, fmt.Sprintf("dimensions %dx%d vs %dx%d", l.Width, l.Height, other.Width, other.Height)
	}
	for i := range l.GeoTransform {
		if math.Abs(l.GeoTransform[i]-other.GeoTransform[i]) > geoTransformTolerance {
			return false, fmt.Sprintf("geotransform component %d: %g vs %g", i, l.GeoTransform[i], other.GeoTransform[i])
		}
	}
	if l.Projection != other.Projection {
		return false, "coordinate reference mismatch"
	}

	return true, ""
}

const geoTransformTolerance = 1e-9

// EmptyLike returns a zero-filled layer for the given year carrying this
// layer's spatial metadata. The synthesizer uses it so outputs inherit
// geometry exactly.
func (l *Layer) EmptyLike(year int) *Layer {
	out := &Layer{
		Year:         year,
		Width:        l.Width,
		Height:       l.Height,
		Data:         make([]float64, l.Width*l.Height),
		GeoTransform: l.GeoTransform,
		Projection:   l.Projection,
	}
	if l.NoData != nil {
		nd := *l.NoData
		out.NoData = &nd
	}

	return out
}
