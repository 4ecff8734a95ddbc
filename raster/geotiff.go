package raster

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"

	"github.com/airbusgeo/godal"
)

var registerOnce sync.Once

func registerDrivers() {
	registerOnce.Do(godal.RegisterAll)
}

// ReadLayer reads band 1 of a georeferenced raster file as a layer for the
// given year.
func ReadLayer(path string, year int) (*Layer, error) {
	registerDrivers()

	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raster %s: %w", path, err)
	}
	defer ds.Close()

	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, fmt.Errorf("raster %s has no bands", path)
	}
	band := bands[0]

	width := band.Structure().SizeX
	height := band.Structure().SizeY
	data := make([]float64, width*height)
	if err := band.Read(0, 0, data, width, height); err != nil {
		return nil, fmt.Errorf("failed to read band 1 of %s: %w", path, err)
	}

	layer, err := NewLayer(year, width, height, data)
	if err != nil {
		return nil, err
	}

	gt, err := ds.GeoTransform()
	if err == nil {
		layer.GeoTransform = gt
	}
	layer.Projection = ds.Projection()
	if nodata, ok := band.NoData(); ok {
		layer.NoData = &nodata
	}

	return layer, nil
}

// WriteLayer writes a layer as a single-band Float64 GeoTIFF, preserving
// geotransform, projection and NoData sentinel.
func WriteLayer(path string, layer *Layer) error {
	registerDrivers()

	ds, err := godal.Create(godal.GTiff, path, 1, godal.Float64, layer.Width, layer.Height,
		godal.CreationOption("COMPRESS=DEFLATE", "TILED=YES"))
	if err != nil {
		return fmt.Errorf("failed to create raster %s: %w", path, err)
	}
	defer ds.Close()

	if err := ds.SetGeoTransform(layer.GeoTransform); err != nil {
		return fmt.Errorf("failed to set geotransform on %s: %w", path, err)
	}
	if layer.Projection != "" {
		if err := ds.SetProjection(layer.Projection); err != nil {
			return fmt.Errorf("failed to set projection on %s: %w", path, err)
		}
	}

	band := ds.Bands()[0]
	if layer.NoData != nil {
		if err := band.SetNoData(*layer.NoData); err != nil {
			return fmt.Errorf("failed to set nodata on %s: %w", path, err)
		}
	}
	if err := band.Write(0, 0, layer.Data, layer.Width, layer.Height); err != nil {
		return fmt.Errorf("failed to write band 1 of %s: %w", path, err)
	}

	return nil
}

var yearPattern = regexp.MustCompile(`(\d{4})`)

// YearFromFilename extracts the observation year from names like
// VIIRS_2021.tif or ntl-2019.tiff. The last 4-digit group in the base name
// wins, so paths with numeric directories still parse correctly.
func YearFromFilename(path string) (int, error) {
	base := filepath.Base(path)
	matches := yearPattern.FindAllString(base, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("no 4-digit year in filename %q", base)
	}

	year, err := strconv.Atoi(matches[len(matches)-1])
	if err != nil {
		return 0, err
	}

	return year, nil
}
