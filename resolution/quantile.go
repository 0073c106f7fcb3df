package resolution

import (
	"fmt"
	"math"
	"sort"

	"go-hep.org/x/hep/hbook"
)

// Probabilities are the quantile probabilities used by Compute: the display
// window edges first, then the one-sigma band.
var Probabilities = []float64{0.001, 0.999, 0.84, 0.16}

// Quantiles computes histogram quantiles the way ROOT's TH1::GetQuantiles
// does: from the normalized cumulative bin content, interpolating linearly
// inside the bin where the probability is crossed. Under- and overflow are
// ignored.
func Quantiles(h *hbook.H1D, probs ...float64) ([]float64, error) {
	bins := h.Binning.Bins
	n := len(bins)
	if n == 0 {
		return nil, ErrEmptyHistogram
	}

	cum := make([]float64, n+1)
	for i := range bins {
		w := bins[i].SumW()
		if w < 0 || math.IsNaN(w) {
			return nil, fmt.Errorf("resolution: bin %d has invalid content %v", i, w)
		}
		cum[i+1] = cum[i] + w
	}
	total := cum[n]
	if !(total > 0) {
		return nil, ErrEmptyHistogram
	}
	for i := range cum {
		cum[i] /= total
	}

	qs := make([]float64, len(probs))
	for j, p := range probs {
		// largest bin whose lower cumulative edge is <= p
		i := sort.Search(n+1, func(k int) bool { return cum[k] > p }) - 1
		i = max(0, min(i, n-1))

		x := bins[i].XMin()
		if d := cum[i+1] - cum[i]; d > 0 {
			x += bins[i].XWidth() * (p - cum[i]) / d
		}
		qs[j] = x
	}
	return qs, nil
}

// Window returns the display range covering the 0.1% and 99.9% quantiles,
// symmetrized around zero.
func Window(q001, q999 float64) (lo, hi float64) {
	return math.Min(q001, -q999), math.Max(-q001, q999)
}

// Moments returns the mean, the RMS (standard deviation) and the standard
// error on the RMS from the histogram summary statistics.
func Moments(h *hbook.H1D) (mean, rms, rmsErr float64) {
	sumw := h.SumW()
	if sumw == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	mean = h.SumWX() / sumw
	v := h.SumWX2()/sumw - mean*mean
	if v < 0 {
		v = 0
	}
	rms = math.Sqrt(v)

	rmsErr = math.NaN()
	if neff := h.EffEntries(); neff > 0 {
		rmsErr = rms / math.Sqrt(2*neff)
	}
	return mean, rms, rmsErr
}

func integral(h *hbook.H1D) float64 {
	var sum float64
	for i := range h.Binning.Bins {
		sum += h.Binning.Bins[i].SumW()
	}
	return sum
}
