package regression

import (
	"fmt"
	"testing"

	"github.com/firmanaf/ntlmodeling/raster"
)

func benchStack(b *testing.B, width, height int, years []int) *raster.Stack {
	b.Helper()

	layers := make([]*raster.Layer, len(years))
	for i, y := range years {
		data := make([]float64, width*height)
		for p := range data {
			data[p] = float64(p%13) + float64(y-years[0])*float64(p%7)
		}
		l, err := raster.NewLayer(y, width, height, data)
		if err != nil {
			b.Fatalf("NewLayer failed: %v", err)
		}
		layers[i] = l
	}
	stack, err := raster.NewStack(layers)
	if err != nil {
		b.Fatalf("NewStack failed: %v", err)
	}

	return stack
}

func BenchmarkFit(b *testing.B) {
	years := []int{2014, 2015, 2016, 2017, 2018, 2019, 2020, 2021, 2022, 2023}

	kinds := []ModelKind{ModelLinear, ModelPolynomial, ModelRidge, ModelLasso}
	for _, kind := range kinds {
		for _, side := range []int{128, 512} {
			b.Run(fmt.Sprintf("%s_%dx%d", kind, side, side), func(b *testing.B) {
				stack := benchStack(b, side, side, years)
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					_, err := Fit(stack,
						WithModelKind(kind),
						WithDegree(2),
						WithAlpha(0.5),
						WithNormalization(NormZScore),
					)
					if err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkPredictYear(b *testing.B) {
	years := []int{2014, 2016, 2018, 2020, 2022}
	stack := benchStack(b, 512, 512, years)
	result, err := Fit(stack, WithModelKind(ModelLinear))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = result.PredictYear(2030)
	}
}
