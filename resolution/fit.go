package resolution

import (
	"fmt"
	"math"

	"go-hep.org/x/hep/fit"
	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

const (
	nParams = 3

	// FWHMPoints is the number of grid points scanned by FWHM.
	FWHMPoints = 10000
)

// Gauss is A*exp(-0.5*((x-Mu)/Sigma)^2).
type Gauss struct {
	Amp   float64
	Mu    float64
	Sigma float64
}

func (g Gauss) Eval(x float64) float64 {
	return gauss(x, []float64{g.Amp, g.Mu, g.Sigma})
}

func gauss(x float64, ps []float64) float64 {
	if ps[2] == 0 {
		return 0
	}
	z := (x - ps[1]) / ps[2]
	return ps[0] * math.Exp(-0.5*z*z)
}

// FitResult is a converged Gaussian fit.
type FitResult struct {
	Gauss
	SigmaErr float64
	Chi2     float64
	NDF      int
}

// failedFit is reported whenever no usable fit exists.
func failedFit() FitResult {
	nan := math.NaN()
	return FitResult{Gauss: Gauss{nan, nan, nan}, SigmaErr: nan, Chi2: nan}
}

// OK reports whether the fit produced a usable width.
func (r FitResult) OK() bool {
	return r.Sigma > 0 && !math.IsInf(r.Sigma, 0) && !math.IsNaN(r.Mu)
}

// SeedGauss starts a fit at the histogram mean and RMS. The amplitude is
// the tallest bin in [lo, hi], or the peak height of a Gaussian of the
// histogram integral when the window has no filled bin.
func SeedGauss(h *hbook.H1D, lo, hi, mean, rms float64) Gauss {
	seed := Gauss{Mu: mean, Sigma: rms}
	var width float64
	for i := range h.Binning.Bins {
		b := &h.Binning.Bins[i]
		width = b.XWidth()
		if x := b.XMid(); x < lo || x > hi {
			continue
		}
		seed.Amp = math.Max(seed.Amp, b.SumW())
	}
	if seed.Amp <= 0 && rms > 0 && width > 0 {
		seed.Amp = integral(h) * width / (rms * math.Sqrt(2*math.Pi))
	}
	return seed
}

// FitGauss fits a Gaussian to the bins of h whose centre lies in [lo, hi]
// by chi-square minimization. Empty bins are skipped and bin errors are
// sqrt(sumw2). The returned sigma is always positive; its error comes from
// the chi-square Hessian at the minimum and is NaN when that is singular.
// A minimum no better than the zero curve, or narrower than a bin, is a
// collapsed fit and reported as a FitError.
func FitGauss(h *hbook.H1D, lo, hi float64, seed Gauss) (FitResult, error) {
	var xs, ys, es []float64
	binWidth := math.Inf(1)
	for i := range h.Binning.Bins {
		b := &h.Binning.Bins[i]
		x := b.XMid()
		if x < lo || x > hi {
			continue
		}
		binWidth = math.Min(binWidth, b.XWidth())
		y, e := b.SumW(), math.Sqrt(b.SumW2())
		if y <= 0 || e <= 0 {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
		es = append(es, e)
	}
	if len(xs) < nParams {
		return failedFit(), &FitError{Reason: fmt.Sprintf("%d non-empty bins in [%g, %g] for %d parameters", len(xs), lo, hi, nParams)}
	}

	chi2 := func(ps []float64) float64 {
		var sum float64
		for i, x := range xs {
			r := (gauss(x, ps) - ys[i]) / es[i]
			sum += r * r
		}
		if math.IsNaN(sum) {
			return math.Inf(1)
		}
		return sum
	}

	res, err := fit.Curve1D(
		fit.Func1D{
			F:   gauss,
			Ps:  []float64{seed.Amp, seed.Mu, seed.Sigma},
			X:   xs,
			Y:   ys,
			Err: es,
		},
		&optimize.Settings{
			MajorIterations: 20000,
			Converger: &optimize.FunctionConverge{
				Absolute:   1e-12,
				Relative:   1e-12,
				Iterations: 500,
			},
		},
		&optimize.NelderMead{},
	)
	if err != nil {
		return failedFit(), &FitError{Reason: "minimization", Err: err}
	}
	if err := res.Status.Err(); err != nil {
		return failedFit(), &FitError{Reason: "minimization", Err: err}
	}
	ps := append([]float64(nil), res.X...)

	// Nelder-Mead stops on a flat simplex; a gradient pass tightens the
	// minimum before the Hessian is taken.
	polish := optimize.Problem{
		Func: chi2,
		Grad: func(grad, x []float64) { fd.Gradient(grad, chi2, x, nil) },
	}
	if pr, err := optimize.Minimize(polish, ps, nil, &optimize.BFGS{}); pr != nil && err == nil && pr.F < chi2(ps) {
		ps = pr.X
	}

	out := FitResult{
		Gauss:    Gauss{Amp: ps[0], Mu: ps[1], Sigma: math.Abs(ps[2])},
		SigmaErr: math.NaN(),
		Chi2:     chi2(ps),
		NDF:      len(xs) - nParams,
	}
	if !out.OK() {
		return failedFit(), &FitError{Reason: fmt.Sprintf("degenerate width %g", ps[2])}
	}
	if zero := chi2([]float64{0, 0, 1}); !(out.Chi2 < zero) {
		return failedFit(), &FitError{Reason: fmt.Sprintf("chi2 %g no better than the zero curve (%g)", out.Chi2, zero)}
	}
	if out.Sigma < binWidth {
		return failedFit(), &FitError{Reason: fmt.Sprintf("width %g narrower than a bin (%g)", out.Sigma, binWidth)}
	}

	hess := mat.NewSymDense(nParams, nil)
	fd.Hessian(hess, chi2, ps, nil)
	var cov mat.Dense
	if err := cov.Inverse(hess); err == nil {
		// chi2 is not halved, so the covariance is 2*H^-1.
		if v := 2 * cov.At(2, 2); v >= 0 {
			out.SigmaErr = math.Sqrt(v)
		}
	}
	return out, nil
}

// FWHM returns the full width at half maximum of the fitted curve. The peak
// is the curve maximum over [lo, hi], the fit window; the width is measured
// on a grid of FWHMPoints points spanning mu ± 3 sigma. NaN is returned when
// the fit is unusable or the peak is not positive.
func FWHM(g Gauss, lo, hi float64) float64 {
	if !(g.Sigma > 0) || math.IsInf(g.Sigma, 0) || math.IsNaN(g.Mu) {
		return math.NaN()
	}

	grid := make([]float64, FWHMPoints)
	floats.Span(grid, lo, hi)
	peak := math.Inf(-1)
	for _, x := range grid {
		peak = math.Max(peak, g.Eval(x))
	}
	if !(peak > 0) {
		return math.NaN()
	}
	half := 0.5 * peak

	floats.Span(grid, g.Mu-3*g.Sigma, g.Mu+3*g.Sigma)
	x1, x2 := math.NaN(), math.NaN()
	for _, x := range grid {
		if g.Eval(x) < half {
			continue
		}
		if math.IsNaN(x1) {
			x1 = x
		}
		x2 = x
	}
	return math.Abs(x2 - x1)
}
