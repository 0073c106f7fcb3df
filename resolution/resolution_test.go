package resolution

import (
	"errors"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rbase"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/hbook"
	"go.uber.org/zap"

	"github.com/decibelcooper/d0z0/card"
	"github.com/decibelcooper/d0z0/record"
)

var fwhmFactor = 2 * math.Sqrt(2*math.Ln2)

// exactGauss fills every bin with the expected content of n entries drawn
// from N(mu, sigma).
func exactGauss(nbins int, lo, hi, n, mu, sigma float64) *hbook.H1D {
	h := hbook.NewH1D(nbins, lo, hi)
	width := (hi - lo) / float64(nbins)
	for i := 0; i < nbins; i++ {
		x := lo + (float64(i)+0.5)*width
		z := (x - mu) / sigma
		w := n * width * math.Exp(-0.5*z*z) / (sigma * math.Sqrt(2*math.Pi))
		if w > 0 {
			h.Fill(x, w)
		}
	}
	return h
}

func sampledGauss(n int, mu, sigma float64, seed uint64) *hbook.H1D {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	h := hbook.NewH1D(200, -50, 50)
	for i := 0; i < n; i++ {
		h.Fill(mu+sigma*rng.NormFloat64(), 1)
	}
	return h
}

func TestComputeNoiselessGauss(t *testing.T) {
	const mu, sigma = 1.0, 5.0
	h := exactGauss(400, -50, 50, 1e5, mu, sigma)

	res, err := Compute(h)
	require.NoError(t, err)
	require.NoError(t, res.FitErr)

	assert.InEpsilon(t, sigma, res.Fit.Sigma, 1e-3)
	assert.InDelta(t, mu, res.Fit.Mu, 1e-3)
	assert.False(t, math.IsNaN(res.Fit.SigmaErr))

	grid := 2 * 6 * res.Fit.Sigma / (FWHMPoints - 1)
	assert.InDelta(t, res.Fit.Sigma*fwhmFactor, res.FWHM, 2*grid)
	assert.InEpsilon(t, sigma*fwhmFactor, res.FWHM, 2e-3)

	assert.InEpsilon(t, sigma, res.RMS, 1e-2)
	assert.InEpsilon(t, sigma, res.ResQuantile, 2e-2)
}

func TestComputeSampledGauss(t *testing.T) {
	res, err := Compute(sampledGauss(10000, 0, 5, 42))
	require.NoError(t, err)
	require.NoError(t, res.FitErr)
	assert.InEpsilon(t, 5.0, res.Fit.Sigma, 0.05)
	assert.InDelta(t, 0, res.Fit.Mu, 0.2)
	assert.InEpsilon(t, 5.0*fwhmFactor, res.FWHM, 0.05)
}

func TestSeedGauss(t *testing.T) {
	h := exactGauss(400, -50, 50, 1e5, 1, 5)
	peak := h.Binning.Bins[0].SumW()
	for i := range h.Binning.Bins {
		peak = math.Max(peak, h.Binning.Bins[i].SumW())
	}

	seed := SeedGauss(h, -20, 20, 1, 5)
	assert.Equal(t, peak, seed.Amp)
	assert.Equal(t, 1.0, seed.Mu)
	assert.Equal(t, 5.0, seed.Sigma)

	// Empty window: the amplitude of a Gaussian with the same integral.
	seed = SeedGauss(h, 100, 200, 1, 5)
	assert.InEpsilon(t, integral(h)*0.25/(5*math.Sqrt(2*math.Pi)), seed.Amp, 1e-12)
}

func TestFitGaussRejectsCollapse(t *testing.T) {
	h := exactGauss(400, -50, 50, 1e5, 1, 5)
	res, err := Compute(h)
	require.NoError(t, err)

	// The integral is far above the peak height and leads the simplex to a
	// spike between bin centres.
	fr, err := FitGauss(h, res.Lo, res.Hi, Gauss{Amp: res.Integral, Mu: res.Mean, Sigma: res.RMS})
	if err != nil {
		var fitErr *FitError
		require.True(t, errors.As(err, &fitErr))
		assert.True(t, math.IsNaN(fr.Sigma))
		return
	}
	assert.InEpsilon(t, 5.0, fr.Sigma, 0.05)
}

func TestQuantileResolutionSignFlip(t *testing.T) {
	h := exactGauss(100, -25, 25, 1e4, 0, 4)
	flipped := hbook.NewH1D(100, -25, 25)
	for i := range h.Binning.Bins {
		b := &h.Binning.Bins[i]
		if w := b.SumW(); w > 0 {
			flipped.Fill(-b.XMid(), w)
		}
	}

	a, err := Compute(h)
	require.NoError(t, err)
	b, err := Compute(flipped)
	require.NoError(t, err)
	assert.InDelta(t, a.ResQuantile, b.ResQuantile, 1e-9)
	assert.InDelta(t, a.Lo, b.Lo, 1e-9)
	assert.InDelta(t, a.Hi, b.Hi, 1e-9)
}

func TestQuantileInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for iter := 0; iter < 200; iter++ {
		nbins := 1 + rng.IntN(60)
		h := hbook.NewH1D(nbins, -10-10*rng.Float64(), 10*rng.Float64()+1)
		for i := range h.Binning.Bins {
			if rng.Float64() < 0.3 {
				continue
			}
			h.Fill(h.Binning.Bins[i].XMid(), 100*rng.Float64())
		}
		if integral(h) == 0 {
			continue
		}

		qs, err := Quantiles(h, Probabilities...)
		require.NoError(t, err)
		lo, hi := Window(qs[0], qs[1])

		assert.GreaterOrEqual(t, 0.5*(qs[2]-qs[3]), 0.0)
		assert.LessOrEqual(t, lo, qs[3])
		assert.GreaterOrEqual(t, hi, qs[2])
		for i := 1; i < len(qs); i++ {
			assert.GreaterOrEqual(t, hi, qs[i])
			assert.LessOrEqual(t, lo, qs[i])
		}
	}
}

func TestQuantilesInterpolate(t *testing.T) {
	h := hbook.NewH1D(4, 0, 4)
	h.Fill(0.5, 1)
	h.Fill(2.5, 3)

	qs, err := Quantiles(h, 0, 0.25, 0.5, 1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 2, 2 + 1.0/3, 3}, qs, 1e-12)
}

func TestDegenerateSingleBin(t *testing.T) {
	h := hbook.NewH1D(1, -1, 1)
	for i := 0; i < 100; i++ {
		h.Fill(0, 1)
	}

	res, err := Compute(h)
	require.NoError(t, err)

	var fitErr *FitError
	require.True(t, errors.As(res.FitErr, &fitErr))
	assert.True(t, math.IsNaN(res.Fit.Sigma))
	assert.True(t, math.IsNaN(res.Fit.SigmaErr))
	assert.True(t, math.IsNaN(res.FWHM))
	assert.InDelta(t, 0.68, res.ResQuantile, 1e-12)
	assert.Equal(t, 0.0, res.RMS)

	rec, collisions := res.Record(Meta{Subsystem: "VTXIB", Layer: 1, Radius: 13.7})
	assert.Empty(t, collisions)
	raw, err := rec.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"sigma":null`)
	assert.Contains(t, string(raw), `"sigma_FWHM":null`)
}

func TestLegendUnits(t *testing.T) {
	res := Result{Mean: 0.1, RMS: 5, ResQuantile: 4.9, FWHM: 11.7, Fit: FitResult{Gauss: Gauss{Mu: 0.1, Sigma: 5}, SigmaErr: 0.05}}
	entries := legend(res)
	require.Len(t, entries, 5)
	assert.Equal(t, "Resolution = 4.9000 µm", entries[1])
	for _, e := range entries {
		assert.True(t, strings.HasSuffix(e, " µm"), e)
	}

	res.FitErr = &FitError{Reason: "minimization"}
	assert.Len(t, legend(res), 2)
}

func TestEmptyHistogram(t *testing.T) {
	_, err := Compute(hbook.NewH1D(10, -1, 1))
	assert.ErrorIs(t, err, ErrEmptyHistogram)
}

func TestFWHM(t *testing.T) {
	g := Gauss{Amp: 10, Mu: 2, Sigma: 3}
	grid := 6 * g.Sigma / (FWHMPoints - 1)
	assert.InDelta(t, g.Sigma*fwhmFactor, FWHM(g, -10, 14), 2*grid)

	assert.True(t, math.IsNaN(FWHM(Gauss{Amp: -10, Mu: 0, Sigma: 3}, -10, 10)))
	assert.True(t, math.IsNaN(FWHM(Gauss{Amp: 10, Mu: 0, Sigma: 0}, -10, 10)))
	assert.True(t, math.IsNaN(FWHM(Gauss{Amp: 10, Mu: math.NaN(), Sigma: 1}, -10, 10)))
}

func TestRecordMerge(t *testing.T) {
	c := card.New(1, 10, 5, 13, 1000)
	c.Set("radius", "99")
	c.Set("sigma", "from-card")

	res := Result{RMS: 5, RMSErr: 0.1, ResQuantile: 4.9, FWHM: 11.7, Fit: FitResult{Gauss: Gauss{Sigma: 5}, SigmaErr: 0.05}}
	rec, collisions := res.Record(Meta{Subsystem: "VTXIB", Layer: 1, Radius: 13.7, Card: c})
	assert.Equal(t, []string{"radius", "sigma"}, collisions)

	assert.Equal(t, []string{
		"subsystem", "layer", "radius",
		"npart", "theta_range", "mom_range", "pid_list", "nevents",
		"sigma",
		"rms", "rms_err", "sigma_err", "res_quantile", "sigma_FWHM",
	}, rec.Keys())

	radius, _ := rec.Get(record.KeyRadius)
	assert.Equal(t, "99", radius)
	sigma, err := rec.Float(record.KeySigma)
	require.NoError(t, err)
	assert.Equal(t, 5.0, sigma)
}

func writeROOT(t *testing.T, path, name string, h *hbook.H1D) {
	t.Helper()
	f, err := groot.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Put(name, rhist.NewH1DFrom(h)))
	require.NoError(t, f.Close())
}

func TestExtractorEndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "mu_minus_theta_10_p_1.root")
	cardPath := filepath.Join(dir, "mu_minus_theta_10_p_1.input")
	out := filepath.Join(dir, "mu_minus_theta_10_p_1")

	writeROOT(t, input, "RP_TRK_D0_um", sampledGauss(10000, 0, 5, 42))
	require.NoError(t, card.New(1, 10, 1, 13, 10000).WriteFile(cardPath))

	ext := &Extractor{Log: zap.NewNop()}
	res, err := ext.Do(Job{
		Input:     input,
		Hist:      "RP_TRK_D0_um",
		Card:      cardPath,
		Output:    out,
		Label:     "d0",
		Subsystem: "VTXIB",
		Layer:     1,
		Radius:    13.7,
	})
	require.NoError(t, err)
	require.NoError(t, res.FitErr)

	for _, ext := range []string{".json", ".png", ".pdf"} {
		_, err := os.Stat(out + ext)
		assert.NoError(t, err, ext)
	}

	rec, err := record.ReadFile(out + ".json")
	require.NoError(t, err)

	sigma, err := rec.Float(record.KeySigma)
	require.NoError(t, err)
	assert.InEpsilon(t, 5.0, sigma, 0.05)

	rms, err := rec.Float(record.KeyRMS)
	require.NoError(t, err)
	assert.InEpsilon(t, 5.0, rms, 0.05)

	fwhm, err := rec.Float(record.KeySigmaFWHM)
	require.NoError(t, err)
	assert.InEpsilon(t, sigma*fwhmFactor, fwhm, 0.01)

	theta, err := rec.Float("theta_range")
	require.NoError(t, err)
	assert.Equal(t, 10.0, theta)

	sub, err := rec.String(record.KeySubsystem)
	require.NoError(t, err)
	assert.Equal(t, "VTXIB", sub)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hists.root")

	f, err := groot.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Put("note", rbase.NewObjString("not a histogram")))
	require.NoError(t, f.Close())

	_, err = Load(path, "RP_TRK_Z0_um")
	var notFound *HistNotFoundError
	assert.True(t, errors.As(err, &notFound))

	_, err = Load(path, "note")
	var wrongType *HistTypeError
	assert.True(t, errors.As(err, &wrongType))

	_, err = Load(filepath.Join(dir, "missing.root"), "h")
	assert.Error(t, err)
}

func TestExtractorMissingCard(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.root")
	writeROOT(t, input, "h", sampledGauss(100, 0, 5, 1))

	ext := &Extractor{NoPlots: true}
	_, err := ext.Do(Job{Input: input, Hist: "h", Card: filepath.Join(dir, "none.input"), Output: filepath.Join(dir, "out")})
	assert.ErrorContains(t, err, "gun card")
}
