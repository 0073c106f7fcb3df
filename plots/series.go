package plots

import (
	"fmt"
	"math"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"

	"github.com/decibelcooper/d0z0/points"
)

// Axis selects the abscissa of a series plot.
type Axis int

const (
	CosTheta Axis = iota
	Theta
	Radius
)

func (a Axis) of(pt points.Point) float64 {
	switch a {
	case Theta:
		return pt.Theta
	case Radius:
		return pt.Radius
	default:
		return pt.CosTheta
	}
}

func (a Axis) label() string {
	switch a {
	case Theta:
		return "θ (deg)"
	case Radius:
		return "radius (mm)"
	default:
		return "cos θ"
	}
}

// positive returns the points drawable on a log axis and their errors.
// Error bars are clipped above zero.
func positive(pts []points.Point, axis Axis) (plotutil.ErrorPoints, bool) {
	var (
		ep     plotutil.ErrorPoints
		hasErr bool
	)
	for _, pt := range pts {
		if !(pt.Value > 0) || math.IsInf(pt.Value, 0) {
			continue
		}
		e := pt.Err
		if math.IsNaN(e) || e < 0 {
			e = 0
		} else {
			hasErr = true
		}
		ep.XYs = append(ep.XYs, plotter.XY{X: axis.of(pt), Y: pt.Value})
		ep.YErrors = append(ep.YErrors, struct{ Low, High float64 }{Low: math.Min(e, 0.9*pt.Value), High: e})
	}
	ep.XErrors = make(plotter.XErrors, len(ep.XYs))
	return ep, hasErr
}

// Individual draws one detector's estimator against cos(theta), one line
// per momentum, on a log scale.
func Individual(s points.Series, title, ylabel, out string) error {
	return series(s, CosTheta, title, ylabel, out)
}

// ThetaScan draws one detector's estimator against theta.
func ThetaScan(s points.Series, title, ylabel, out string) error {
	return series(s, Theta, title, ylabel, out)
}

func series(s points.Series, axis Axis, title, ylabel, out string) error {
	p := newPlot(title, axis.label(), ylabel)
	logY(p)
	p.Legend.Top = true
	p.Legend.Left = axis == CosTheta

	grid := plotter.NewGrid()
	grid.Vertical = dashed(grid.Vertical.Color)
	grid.Horizontal = dashed(grid.Horizontal.Color)
	p.Add(grid)

	var drawn int
	for i, mom := range s.Momenta() {
		ep, hasErr := positive(s[mom], axis)
		if len(ep.XYs) == 0 {
			continue
		}
		drawn++
		st := MomentumStyle(mom, i)

		line, scatter, err := plotter.NewLinePoints(ep.XYs)
		if err != nil {
			return fmt.Errorf("plots: %w", err)
		}
		line.Color = st.Color
		scatter.GlyphStyle = glyphs(st, false)
		p.Add(line, scatter)

		if hasErr {
			bars, err := plotter.NewYErrorBars(ep)
			if err != nil {
				return fmt.Errorf("plots: %w", err)
			}
			bars.Color = st.Color
			p.Add(bars)
		}
		p.Legend.Add(fmt.Sprintf("p = %g GeV", mom), line, scatter)
	}
	if drawn == 0 {
		return fmt.Errorf("plots: %s: no positive values to draw", out)
	}
	fixLogRange(p)
	return save(p, width, height, out)
}
