package plots

import (
	"fmt"
	"image/color"
	"math"

	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/decibelcooper/d0z0/points"
)

// Ratios divides num by den point by point for every momentum, pairing
// points of equal theta. A zero denominator gives a zero ratio.
func Ratios(num, den points.Series, axis Axis) map[float64]plotter.XYs {
	out := make(map[float64]plotter.XYs)
	for _, mom := range num.Momenta() {
		byTheta := make(map[float64]float64)
		for _, pt := range den[mom] {
			byTheta[pt.Theta] = pt.Value
		}
		var xys plotter.XYs
		for _, pt := range num[mom] {
			d, ok := byTheta[pt.Theta]
			if !ok {
				continue
			}
			r := 0.0
			if d != 0 {
				r = pt.Value / d
			}
			xys = append(xys, plotter.XY{X: axis.of(pt), Y: r})
		}
		if len(xys) > 0 {
			out[mom] = xys
		}
	}
	return out
}

// PaddedRange returns the y extent of xys padded by 10% of its width, or
// by 0.1 when all values coincide.
func PaddedRange(xys map[float64]plotter.XYs) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range xys {
		for _, xy := range s {
			if math.IsNaN(xy.Y) || math.IsInf(xy.Y, 0) {
				continue
			}
			lo = math.Min(lo, xy.Y)
			hi = math.Max(hi, xy.Y)
		}
	}
	if lo > hi {
		return 0, 2
	}
	pad := 0.1 * (hi - lo)
	if pad == 0 {
		pad = 0.1
	}
	return lo - pad, hi + pad
}

// ratioPlot stacks a main plot over a ratio panel taking Ratio of the
// height.
type ratioPlot struct {
	Top, Bottom *hplot.Plot
	Ratio       float64
}

func (rp ratioPlot) Draw(dc draw.Canvas) {
	h := dc.Max.Y - dc.Min.Y
	rp.Top.Draw(draw.Crop(dc, 0, 0, vg.Length(rp.Ratio)*h, 0))
	rp.Bottom.Draw(draw.Crop(dc, 0, 0, 0, -vg.Length(1-rp.Ratio)*h))
}

// Comparison draws det against ref on a log scale, filled glyphs for det
// and open ones for ref, over a panel of det/ref ratios.
func Comparison(det, ref points.Series, detName, refName, title, ylabel, out string) error {
	top := newPlot(title, "", ylabel)
	logY(top)
	top.Legend.Top = true
	top.Legend.Left = true
	top.Add(plotter.NewGrid())

	moms := det.Momenta()
	var drawn int
	for i, mom := range moms {
		st := MomentumStyle(mom, i)
		for _, side := range []struct {
			name string
			pts  []points.Point
			open bool
		}{
			{detName, det[mom], false},
			{refName, ref[mom], true},
		} {
			ep, _ := positive(side.pts, CosTheta)
			if len(ep.XYs) == 0 {
				continue
			}
			sc, err := plotter.NewScatter(ep.XYs)
			if err != nil {
				return fmt.Errorf("plots: %w", err)
			}
			sc.GlyphStyle = glyphs(st, side.open)
			top.Add(sc)
			drawn++
			top.Legend.Add(fmt.Sprintf("%g GeV (%s)", mom, side.name), sc)
		}
	}

	if drawn == 0 {
		return fmt.Errorf("plots: %s: no positive values to draw", out)
	}
	fixLogRange(top)

	ratios := Ratios(det, ref, CosTheta)
	bottom := newPlot("", CosTheta.label(), detName+" / "+refName)
	bottom.Add(hline(1, color.Black))
	for i, mom := range moms {
		xys, ok := ratios[mom]
		if !ok {
			continue
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("plots: %w", err)
		}
		sc.GlyphStyle = glyphs(Style{Color: MomentumStyle(mom, i).Color, Glyph: draw.CircleGlyph{}}, false)
		bottom.Add(sc)
	}

	// the ratio panel shares the top abscissa
	top.X.Tick.Marker = plot.ConstantTicks{}
	if top.X.Max > top.X.Min {
		bottom.X.Min, bottom.X.Max = top.X.Min, top.X.Max
	}
	bottom.Y.Min, bottom.Y.Max = PaddedRange(ratios)

	return save(ratioPlot{Top: top, Bottom: bottom, Ratio: 0.3}, width, 9*vg.Inch, out)
}

// ThetaRatio draws num/den against theta per momentum, in [0.8, 1.4].
func ThetaRatio(num, den points.Series, numName, denName, title, out string) error {
	p := newPlot(title, Theta.label(), numName+" / "+denName+" ratio")
	p.Legend.Top = true
	grid := plotter.NewGrid()
	grid.Vertical = dashed(grid.Vertical.Color)
	grid.Horizontal = dashed(grid.Horizontal.Color)
	p.Add(grid, hline(1, color.Gray{Y: 128}))

	ratios := Ratios(num, den, Theta)
	for i, mom := range num.Momenta() {
		xys, ok := ratios[mom]
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
	p.Y.Min, p.Y.Max = 0.8, 1.4
	return save(p, 6*vg.Inch, 4*vg.Inch, out)
}
