package regression

import (
	"math/rand"
	"slices"

	"github.com/firmanaf/ntlmodeling/raster"
)

// SamplePair is one (actual, fitted) observation for scatter diagnostics.
type SamplePair struct {
	Actual    float64
	Predicted float64
}

// SamplePairs draws actual-vs-fitted pairs from the in-sample data, sized
// for plotting. When size is smaller than the population of (year, pixel)
// cells, a subsample is drawn without replacement using the given seed, so
// scatter plots stay reproducible across runs. size <= 0 or size >= the
// population returns the full population in cell order.
func (r *FitResult) SamplePairs(stack *raster.Stack, size int, seed int64) ([]SamplePair, error) {
	if err := r.checkStack(stack); err != nil {
		return nil, err
	}

	rows := r.fittedRows()
	layers := stack.Layers()
	pixels := stack.Pixels()
	population := len(layers) * pixels

	pairAt := func(idx int) SamplePair {
		i := idx / pixels
		p := idx % pixels

		return SamplePair{
			Actual:    layers[i].Data[p],
			Predicted: r.evaluate(p, rows[i]),
		}
	}

	if size <= 0 || size >= population {
		pairs := make([]SamplePair, population)
		for idx := range pairs {
			pairs[idx] = pairAt(idx)
		}

		return pairs, nil
	}

	// Floyd's sampling: picks `size` distinct indices without materializing
	// a permutation of the whole population.
	rng := rand.New(rand.NewSource(seed))
	chosen := make(map[int]struct{}, size)
	for i := population - size; i < population; i++ {
		j := rng.Intn(i + 1)
		if _, taken := chosen[j]; taken {
			chosen[i] = struct{}{}
		} else {
			chosen[j] = struct{}{}
		}
	}

	indices := make([]int, 0, size)
	for idx := range chosen {
		indices = append(indices, idx)
	}
	slices.Sort(indices)

	pairs := make([]SamplePair, len(indices))
	for i, idx := range indices {
		pairs[i] = pairAt(idx)
	}

	return pairs, nil
}
