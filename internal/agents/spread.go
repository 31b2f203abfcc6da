package agents

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// spreadFrequency controls how quickly values drift between neighbouring
// citizens. Lower values give longer runs of similar citizens.
const spreadFrequency = 0.05

// SpreadSeries builds a series of size values centred on base, each within
// ±amplitude, that vary smoothly with citizen index. The same seed always
// yields the same series.
func SpreadSeries(seed int64, size int, base, amplitude float64) Attribute {
	if size <= 0 {
		return Series()
	}

	noise := opensimplex.NewNormalized(seed)
	values := make([]float64, size)
	for i := range values {
		// Normalized noise is in [0, 1); remap to [-1, 1).
		n := noise.Eval2(float64(i)*spreadFrequency, 0)*2 - 1
		n = math.Max(-1, math.Min(1, n))
		values[i] = base + amplitude*n
	}
	return Series(values...)
}
