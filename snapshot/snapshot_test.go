package snapshot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/firmanaf/ntlmodeling/errs"
	"github.com/firmanaf/ntlmodeling/format"
	"github.com/firmanaf/ntlmodeling/raster"
	"github.com/firmanaf/ntlmodeling/regression"
)

func fitTestResult(t *testing.T, opts ...regression.Option) *regression.FitResult {
	t.Helper()

	years := []int{2014, 2016, 2018, 2020, 2022}
	width, height := 8, 6
	nodata := -999.0

	layers := make([]*raster.Layer, len(years))
	for i, y := range years {
		data := make([]float64, width*height)
		for p := range data {
			data[p] = 2.0 + float64(p%5)*0.5 + float64(y-2014)*(0.3+0.01*float64(p%3))
		}
		// One constant pixel so the degenerate path is exercised.
		data[17] = 4.25
		l, err := raster.NewLayer(y, width, height, data)
		require.NoError(t, err)
		l.GeoTransform = [6]float64{110.0, 0.005, 0, -7.0, 0, -0.005}
		l.Projection = "EPSG:4326"
		l.NoData = &nodata
		layers[i] = l
	}
	stack, err := raster.NewStack(layers)
	require.NoError(t, err)

	result, err := regression.Fit(stack, opts...)
	require.NoError(t, err)

	return result
}

func TestSnapshotRoundTrip(t *testing.T) {
	codecs := []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	}
	result := fitTestResult(t,
		regression.WithModelKind(regression.ModelRidge),
		regression.WithDegree(2),
		regression.WithAlpha(0.25),
		regression.WithNormalization(regression.NormZScore),
	)

	for _, ct := range codecs {
		t.Run(ct.String(), func(t *testing.T) {
			data, err := Encode(result, WithCompression(ct))
			require.NoError(t, err)

			restored, err := Decode(data)
			require.NoError(t, err)

			require.Equal(t, result.Kind, restored.Kind)
			require.Equal(t, result.Degree, restored.Degree)
			require.Equal(t, result.Alpha, restored.Alpha)
			require.Equal(t, result.Norm, restored.Norm)
			require.Equal(t, result.DegenerateCount, restored.DegenerateCount)
			require.Equal(t, result.Years(), restored.Years())
			require.Equal(t, result.Width(), restored.Width())
			require.Equal(t, result.Height(), restored.Height())
		})
	}
}

func TestSnapshotPredictionsBitExact(t *testing.T) {
	result := fitTestResult(t, regression.WithModelKind(regression.ModelLinear))

	data, err := Encode(result)
	require.NoError(t, err)
	restored, err := Decode(data)
	require.NoError(t, err)

	for _, year := range []int{2023, 2025, 2030} {
		want := result.PredictYear(year)
		got := restored.PredictYear(year)
		require.Equal(t, want.Data, got.Data, "year %d", year)
		require.Equal(t, want.GeoTransform, got.GeoTransform)
		require.Equal(t, want.Projection, got.Projection)
		require.NotNil(t, got.NoData)
		require.Equal(t, *want.NoData, *got.NoData)
	}
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	result := fitTestResult(t, regression.WithModelKind(regression.ModelLasso), regression.WithAlpha(0.01), regression.WithNormalization(regression.NormMinMax))
	path := filepath.Join(t.TempDir(), "model.ntls")

	require.NoError(t, WriteFile(path, result, WithCompression(format.CompressionS2)))

	restored, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, result.PredictYear(2024).Data, restored.PredictYear(2024).Data)
}

func TestSnapshotWriterReader(t *testing.T) {
	result := fitTestResult(t)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, result))

	restored, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, result.PredictYear(2024).Data, restored.PredictYear(2024).Data)
}

func TestSnapshotChecksumMismatch(t *testing.T) {
	result := fitTestResult(t)
	data, err := Encode(result)
	require.NoError(t, err)

	// Flip one payload bit.
	data[len(data)/2] ^= 0x01

	_, err = Decode(data)
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)
}

func TestSnapshotBadMagic(t *testing.T) {
	result := fitTestResult(t)
	data, err := Encode(result)
	require.NoError(t, err)

	data[0] = 'X'
	_, err = Decode(data)
	require.ErrorIs(t, err, errs.ErrInvalidSnapshot)
}

func TestSnapshotTruncated(t *testing.T) {
	result := fitTestResult(t)
	data, err := Encode(result)
	require.NoError(t, err)

	for _, n := range []int{0, 4, 11, len(data) - 9} {
		_, err := Decode(data[:n])
		require.Error(t, err, "truncated to %d bytes", n)
	}
}

func TestSnapshotRejectsInvalidCompression(t *testing.T) {
	result := fitTestResult(t)

	_, err := Encode(result, WithCompression(format.CompressionType(0x7f)))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestSnapshotNilResult(t *testing.T) {
	_, err := Encode(nil)
	require.ErrorIs(t, err, errs.ErrEmptyResult)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.ntls"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
