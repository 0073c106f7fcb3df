package d0z0

import (
	"math"
	"strconv"

	"gonum.org/v1/plot"
)

// PreciseTicks places major ticks on round multiples of a power of ten so
// that axes such as cos(theta) or layer radius get labels at exactly the
// sampled values instead of the ones plot.DefaultTicks picks.
type PreciseTicks struct {
	NSuggestedTicks int
}

func (t PreciseTicks) Ticks(min, max float64) []plot.Tick {
	if t.NSuggestedTicks < 2 {
		t.NSuggestedTicks = 4
	}
	if !(max > min) || math.IsInf(max-min, 0) {
		return plot.DefaultTicks{}.Ticks(min, max)
	}

	tens := math.Pow10(int(math.Floor(math.Log10(max - min))))
	n := (max - min) / tens
	for n < float64(t.NSuggestedTicks)-1 {
		tens /= 10
		n = (max - min) / tens
	}

	mult := int(n / float64(t.NSuggestedTicks-1))
	switch mult {
	case 0:
		mult = 1
	case 7:
		mult = 6
	case 9:
		mult = 8
	}
	major := float64(mult) * tens

	var ticks []plot.Tick
	seen := make(map[float64]bool)
	last := math.Floor(min/major) * major
	for v := last; v <= max; v += major {
		last = v
		if v < min {
			continue
		}
		r := round(v, -int(math.Floor(math.Log10(major))))
		seen[r] = true
		ticks = append(ticks, plot.Tick{Value: r, Label: strconv.FormatFloat(r, 'g', -1, 64)})
	}

	minor := major / 2
	switch mult {
	case 3, 6:
		minor = major / 3
	case 5:
		minor = major / 5
	}
	for v := math.Floor(min/minor) * minor; v <= max; v += minor {
		r := round(v, -int(math.Floor(math.Log10(minor)))+1)
		if r < min || r > max || seen[r] {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: r})
	}
	return ticks
}

// round rounds x to prec decimal places, never returning negative zero.
func round(x float64, prec int) float64 {
	if x == 0 {
		return 0
	}
	if prec >= 0 && x == math.Trunc(x) {
		return x
	}
	pow := math.Pow10(prec)
	v := x * pow
	if math.IsInf(v, 0) {
		return x
	}
	if x < 0 {
		v = math.Ceil(v - 0.5)
	} else {
		v = math.Floor(v + 0.5)
	}
	if v == 0 {
		return 0
	}
	return v / pow
}
