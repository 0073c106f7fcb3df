package plots

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/decibelcooper/d0z0/points"
)

// Relative returns, per momentum, the change of each point with respect
// to the reference at the same theta and momentum, in percent, against
// layer radius. Momenta without a non-zero reference are left out.
func Relative(s points.Series, refs points.ByTheta) map[float64]plotter.XYs {
	out := make(map[float64]plotter.XYs)
	for mom, pts := range s {
		var xys plotter.XYs
		for _, pt := range pts {
			ref, ok := refs.Reference(pt.Theta, mom)
			if !ok || ref.Value == 0 {
				continue
			}
			xys = append(xys, plotter.XY{X: pt.Radius, Y: (pt.Value - ref.Value) / ref.Value * 100})
		}
		if len(xys) > 0 {
			out[mom] = xys
		}
	}
	return out
}

// RadiusScan draws the relative change of one polar angle's estimators
// against the layer radius, with the reference radius marked in red.
func RadiusScan(s points.Series, refs points.ByTheta, refRadius float64, title, xlabel, ylabel, out string) error {
	rel := Relative(s, refs)
	if len(rel) == 0 {
		return fmt.Errorf("plots: %s: no reference values", out)
	}

	p := newPlot(title, xlabel, ylabel)
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(hline(0, color.Black))

	for i, mom := range s.Momenta() {
		xys, ok := rel[mom]
		if !ok {
			continue
		}
		line, scatter, err := plotter.NewLinePoints(xys)
		if err != nil {
			return fmt.Errorf("plots: %w", err)
		}
		st := MomentumStyle(mom, i)
		line.Color = st.Color
		scatter.GlyphStyle = glyphs(st, false)
		p.Add(line, scatter)
		p.Legend.Add(fmt.Sprintf("p = %g GeV", mom), line, scatter)
	}

	lo, hi := PaddedRange(rel)
	lo, hi = math.Min(lo, 0), math.Max(hi, 0)
	if !math.IsNaN(refRadius) {
		marker, err := plotter.NewLine(plotter.XYs{{X: refRadius, Y: lo}, {X: refRadius, Y: hi}})
		if err != nil {
			return fmt.Errorf("plots: %w", err)
		}
		marker.Color = color.RGBA{R: 204, A: 255}
		marker.Width = vg.Points(2)
		p.Add(marker)
	}
	p.Y.Min, p.Y.Max = lo, hi

	return save(p, width, height, out)
}
