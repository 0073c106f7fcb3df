// Package plots draws the resolution comparison plots. Every plot is
// written twice, as <out>.png and <out>.pdf.
package plots

import (
	"fmt"
	"image/color"

	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/decibelcooper/d0z0"
)

// Style is how one momentum is drawn.
type Style struct {
	Color color.Color
	Glyph draw.GlyphDrawer
	// Open marks the reference detector next to Glyph.
	Open draw.GlyphDrawer
}

var momentumStyles = map[float64]Style{
	1:   {color.Black, draw.CircleGlyph{}, draw.RingGlyph{}},
	5:   {color.RGBA{R: 255, A: 255}, draw.BoxGlyph{}, draw.SquareGlyph{}},
	10:  {color.RGBA{B: 255, A: 255}, draw.PyramidGlyph{}, draw.TriangleGlyph{}},
	50:  {color.RGBA{G: 153, A: 255}, draw.PlusGlyph{}, draw.CrossGlyph{}},
	100: {color.RGBA{R: 204, B: 204, A: 255}, draw.CrossGlyph{}, draw.PlusGlyph{}},
}

// MomentumStyle returns the style of momentum p. Momenta outside the
// standard scan use the plotutil defaults, picked by their index i.
func MomentumStyle(p float64, i int) Style {
	if s, ok := momentumStyles[p]; ok {
		return s
	}
	return Style{
		Color: plotutil.Color(i),
		Glyph: plotutil.Shape(i),
		Open:  plotutil.Shape(i + 4),
	}
}

const (
	width  = 8 * vg.Inch
	height = 6 * vg.Inch
)

func glyphs(s Style, open bool) draw.GlyphStyle {
	g := draw.GlyphStyle{Color: s.Color, Radius: vg.Points(3.5), Shape: s.Glyph}
	if open {
		g.Shape = s.Open
	}
	return g
}

func newPlot(title, xlabel, ylabel string) *hplot.Plot {
	p := hplot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.X.Tick.Marker = d0z0.PreciseTicks{NSuggestedTicks: 5}
	p.Y.Tick.Marker = d0z0.PreciseTicks{NSuggestedTicks: 5}
	return p
}

func logY(p *hplot.Plot) {
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
}

// fixLogRange widens a single-valued log axis around its value; the
// default widening by ±1 would reach below zero.
func fixLogRange(p *hplot.Plot) {
	if p.Y.Min == p.Y.Max && p.Y.Min > 0 {
		p.Y.Min /= 2
		p.Y.Max *= 2
	}
}

func dashed(c color.Color) draw.LineStyle {
	return draw.LineStyle{
		Color:  c,
		Width:  vg.Points(1),
		Dashes: []vg.Length{vg.Points(4), vg.Points(3)},
	}
}

// hline draws y = v across the whole x range.
func hline(v float64, c color.Color) *plotter.Function {
	f := plotter.NewFunction(func(float64) float64 { return v })
	f.LineStyle = dashed(c)
	return f
}

func save(d hplot.Drawer, w, h vg.Length, out string) error {
	if err := hplot.Save(d, w, h, out+".png", out+".pdf"); err != nil {
		return fmt.Errorf("plots: could not save %s: %w", out, err)
	}
	return nil
}
