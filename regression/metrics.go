package regression

import (
	"math"

	"github.com/firmanaf/ntlmodeling/raster"
)

// Metrics is the whole-image model quality, computed once over the flattened
// full dataset of (year, pixel) cells — never averaged per pixel and then
// re-averaged.
type Metrics struct {
	// RSquared is the coefficient of determination over all cells.
	RSquared float64
	// RMSE is the root mean squared error over all cells.
	RMSE float64
}

// Metrics compares observed stack values (post-substitution) against the
// in-sample fitted predictions for every cell and returns the global fit
// quality. The stack must be the one the result was fitted on.
func (r *FitResult) Metrics(stack *raster.Stack) (Metrics, error) {
	if err := r.checkStack(stack); err != nil {
		return Metrics{}, err
	}

	rows := r.fittedRows()
	layers := stack.Layers()
	pixels := stack.Pixels()

	sum := 0.0
	for _, layer := range layers {
		for _, v := range layer.Data {
			sum += v
		}
	}
	count := float64(len(layers) * pixels)
	mean := sum / count

	ssRes := 0.0
	ssTot := 0.0
	for i, layer := range layers {
		row := rows[i]
		for p, obs := range layer.Data {
			resid := obs - r.evaluate(p, row)
			ssRes += resid * resid
			d := obs - mean
			ssTot += d * d
		}
	}

	m := Metrics{RMSE: math.Sqrt(ssRes / count)}
	if ssTot > 0 {
		m.RSquared = 1.0 - ssRes/ssTot
	}

	return m, nil
}

// RobustShare returns the fraction of pixels whose per-pixel R² meets the
// threshold, among pixels with enough variance for R² to be defined.
// Degenerate and constant-series pixels are excluded from the denominator.
func (r *FitResult) RobustShare(stack *raster.Stack, threshold float64) (float64, error) {
	if err := r.checkStack(stack); err != nil {
		return 0, err
	}

	rows := r.fittedRows()
	layers := stack.Layers()
	n := len(layers)
	pixels := stack.Pixels()

	robust, countable := 0, 0
	for p := 0; p < pixels; p++ {
		if r.degenerate[p] {
			continue
		}

		sum := 0.0
		for i := range n {
			sum += layers[i].Data[p]
		}
		mean := sum / float64(n)

		ssRes, ssTot := 0.0, 0.0
		for i := range n {
			obs := layers[i].Data[p]
			resid := obs - r.evaluate(p, rows[i])
			ssRes += resid * resid
			d := obs - mean
			ssTot += d * d
		}
		if ssTot == 0 {
			continue
		}

		countable++
		if 1.0-ssRes/ssTot >= threshold {
			robust++
		}
	}

	if countable == 0 {
		return 0, nil
	}

	return float64(robust) / float64(countable), nil
}
