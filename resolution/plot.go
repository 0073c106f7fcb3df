package resolution

import (
	"fmt"
	"image/color"
	"math"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/decibelcooper/d0z0"
)

// Plot draws the residual histogram and the fitted Gaussian over
// mu ± 3 sigma (the quantile window when the fit failed) and saves it as
// <out>.png and <out>.pdf.
func Plot(h *hbook.H1D, res Result, label, out string) error {
	p := hplot.New()
	p.X.Label.Text = label + " (µm)"
	p.Y.Label.Text = "Events / bin"
	p.X.Tick.Marker = d0z0.PreciseTicks{NSuggestedTicks: 5}

	hh := hplot.NewH1D(h)
	hh.FillColor = nil
	hh.Infos.Style = hplot.HInfoNone
	p.Add(hh, plotter.NewGrid())

	lo, hi := res.Lo, res.Hi
	if res.FitErr == nil {
		lo, hi = res.Fit.Mu-3*res.Fit.Sigma, res.Fit.Mu+3*res.Fit.Sigma

		f := plotter.NewFunction(res.Fit.Eval)
		f.Color = color.RGBA{R: 255, A: 255}
		f.Width = vg.Points(2)
		f.Samples = 500
		p.Add(f)
	}
	if hi > lo {
		p.X.Min, p.X.Max = lo, hi
	}

	var ymax float64
	for i := range h.Binning.Bins {
		ymax = math.Max(ymax, h.Binning.Bins[i].SumW())
	}
	if ymax > 0 {
		p.Y.Min, p.Y.Max = 0, 1.3*ymax
	}

	p.Legend.Top = true
	p.Legend.Left = true
	for _, entry := range legend(res) {
		p.Legend.Add(entry)
	}

	for _, ext := range []string{".png", ".pdf"} {
		if err := p.Save(6*vg.Inch, 6*vg.Inch, out+ext); err != nil {
			return fmt.Errorf("resolution: could not save plot: %w", err)
		}
	}
	return nil
}

// legend lists the estimators shown on the plot, in the histogram unit.
func legend(res Result) []string {
	entries := []string{
		fmt.Sprintf("Mean/RMS = %.4f/%.4f µm", res.Mean, res.RMS),
		fmt.Sprintf("Resolution = %.4f µm", res.ResQuantile),
	}
	if res.FitErr == nil {
		entries = append(entries,
			fmt.Sprintf("σ = %.4f ± %.4f µm", res.Fit.Sigma, res.Fit.SigmaErr),
			fmt.Sprintf("σ FWHM = %.4f µm", res.FWHM),
			fmt.Sprintf("Gauss μ/σ = %.4f/%.4f µm", res.Fit.Mu, res.Fit.Sigma),
		)
	}
	return entries
}
