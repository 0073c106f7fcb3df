package plots

import (
	"fmt"
	"math"
	"sort"

	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/decibelcooper/d0z0/points"
)

// ResGrid lays a series out on a (theta, momentum) grid. Momenta are
// placed at their index so the uneven scan gets even rows.
type ResGrid struct {
	thetas, moms []float64
	z            [][]float64
}

// NewResGrid builds the grid of s. Cells without a point are NaN and
// left blank by the heat map.
func NewResGrid(s points.Series) *ResGrid {
	g := &ResGrid{moms: s.Momenta()}
	seen := make(map[float64]bool)
	for _, pts := range s {
		for _, pt := range pts {
			if !seen[pt.Theta] {
				seen[pt.Theta] = true
				g.thetas = append(g.thetas, pt.Theta)
			}
		}
	}
	sort.Float64s(g.thetas)

	col := make(map[float64]int, len(g.thetas))
	for i, t := range g.thetas {
		col[t] = i
	}
	g.z = make([][]float64, len(g.thetas))
	for i := range g.z {
		g.z[i] = make([]float64, len(g.moms))
		for j := range g.z[i] {
			g.z[i][j] = math.NaN()
		}
	}
	for j, mom := range g.moms {
		for _, pt := range s[mom] {
			g.z[col[pt.Theta]][j] = pt.Value
		}
	}
	return g
}

func (g *ResGrid) Dims() (int, int) { return len(g.thetas), len(g.moms) }

func (g *ResGrid) Z(i, j int) float64 { return g.z[i][j] }

func (g *ResGrid) X(i int) float64 { return g.thetas[i] }

func (g *ResGrid) Y(j int) float64 { return float64(j) }

// Max returns the largest finite value.
func (g *ResGrid) Max() float64 {
	m := math.Inf(-1)
	for _, col := range g.z {
		for _, v := range col {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				m = math.Max(m, v)
			}
		}
	}
	return m
}

func (g *ResGrid) momTicks() plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, len(g.moms))
	for j, mom := range g.moms {
		ticks[j] = plot.Tick{Value: float64(j), Label: fmt.Sprintf("%g", mom)}
	}
	return ticks
}

type heatMap struct {
	main, bar *plot.Plot
}

// Draw places the colour bar in a strip on the right of the map.
func (h heatMap) Draw(dc draw.Canvas) {
	w := dc.Max.X - dc.Min.X
	h.main.Draw(draw.Crop(dc, 0, -w*70/670, 0, 0))
	h.bar.Draw(draw.Crop(dc, w*620/670, 0, 0, 0))
}

// ResolutionMap draws the estimator over the (theta, momentum) scan of one
// detector as a heat map. The colour scale runs from 0 to zmax, or to the
// largest value when zmax is not positive.
func ResolutionMap(s points.Series, title, zlabel string, zmax float64, out string) error {
	g := NewResGrid(s)
	if nx, ny := g.Dims(); nx == 0 || ny == 0 {
		return fmt.Errorf("plots: %s: empty scan", out)
	}
	if !(zmax > 0) {
		zmax = g.Max()
	}
	if !(zmax > 0) {
		return fmt.Errorf("plots: %s: no positive values to draw", out)
	}

	p := newPlot(title, Theta.label(), "p (GeV)")
	p.Y.Tick.Marker = g.momTicks()

	colorMap := moreland.ExtendedBlackBody()
	colorMap.SetMin(0)
	colorMap.SetMax(zmax)
	pal := colorMap.Palette(1000)
	hm := plotter.NewHeatMap(g, pal)
	hm.Min = 0
	hm.Max = zmax
	hm.Overflow = pal.Colors()[len(pal.Colors())-1]
	p.Add(hm)

	bar := hplot.New()
	cb := &plotter.ColorBar{ColorMap: colorMap}
	cb.Vertical = true
	bar.Add(cb)
	bar.HideX()
	bar.Y.Padding = 0
	bar.Y.Label.Text = zlabel

	return save(heatMap{main: p.Plot, bar: bar.Plot}, 670*vg.Points(1), 400*vg.Points(1), out)
}
