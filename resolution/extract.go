// Package resolution extracts impact-parameter resolution estimators from
// residual histograms (reconstructed minus true d0 or z0, in micrometers).
//
// For every histogram it computes the quantile resolution, the RMS and its
// error, a Gaussian fit restricted to the quantile window, and the full
// width at half maximum of the fitted curve, then writes a JSON record and
// png/pdf plots.
package resolution

import (
	"fmt"
	"math"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hbook/rootcnv"
	"go.uber.org/zap"

	"github.com/decibelcooper/d0z0/card"
	"github.com/decibelcooper/d0z0/record"
)

// Result holds every estimator computed from one histogram.
type Result struct {
	Quantiles []float64 // at Probabilities

	// Lo and Hi bound the display and fit window.
	Lo, Hi      float64
	ResQuantile float64

	Integral float64
	Mean     float64
	RMS      float64
	RMSErr   float64

	Fit    FitResult
	FitErr error // non-nil when Fit holds NaN fallbacks

	// FWHM is the full width at half maximum of the fitted curve, not
	// divided by 2*sqrt(2*ln2).
	FWHM float64
}

// Compute runs the four extraction steps on h. Only an unusable histogram
// is an error; a failed fit is reported in Result.FitErr.
func Compute(h *hbook.H1D) (Result, error) {
	qs, err := Quantiles(h, Probabilities...)
	if err != nil {
		return Result{}, err
	}

	var res Result
	res.Quantiles = qs
	res.Lo, res.Hi = Window(qs[0], qs[1])
	res.ResQuantile = 0.5 * (qs[2] - qs[3])

	res.Integral = integral(h)
	res.Mean, res.RMS, res.RMSErr = Moments(h)

	res.Fit, res.FitErr = FitGauss(h, res.Lo, res.Hi, SeedGauss(h, res.Lo, res.Hi, res.Mean, res.RMS))
	res.FWHM = math.NaN()
	if res.FitErr == nil {
		res.FWHM = FWHM(res.Fit.Gauss, res.Lo, res.Hi)
	}
	return res, nil
}

// Meta is the provenance merged into a record.
type Meta struct {
	Subsystem string
	Layer     int
	Radius    float64
	Card      *card.Card
}

// Record builds the JSON record: metadata, then every card entry verbatim,
// then the estimators. Keys written more than once are returned; the later
// value wins.
func (res Result) Record(meta Meta) (*record.Record, []string) {
	var collisions []string
	rec := record.New()
	set := func(k string, v any) {
		if rec.Set(k, v) {
			collisions = append(collisions, k)
		}
	}

	set(record.KeySubsystem, meta.Subsystem)
	set(record.KeyLayer, meta.Layer)
	set(record.KeyRadius, meta.Radius)
	if meta.Card != nil {
		for _, e := range meta.Card.Entries {
			set(e.Key, e.Value)
		}
	}
	set(record.KeyRMS, res.RMS)
	set(record.KeyRMSErr, res.RMSErr)
	set(record.KeySigma, res.Fit.Sigma)
	set(record.KeySigmaErr, res.Fit.SigmaErr)
	set(record.KeyResQuantile, res.ResQuantile)
	set(record.KeySigmaFWHM, res.FWHM)
	return rec, collisions
}

// Load reads the named 1-dim histogram from a ROOT file.
func Load(path, name string) (*hbook.H1D, error) {
	f, err := groot.Open(path)
	if err != nil {
		return nil, fmt.Errorf("resolution: could not open %q: %w", path, err)
	}
	defer f.Close()

	obj, err := f.Get(name)
	if err != nil {
		return nil, &HistNotFoundError{File: path, Name: name, Err: err}
	}
	h1, ok := obj.(rhist.H1)
	if !ok {
		return nil, &HistTypeError{File: path, Name: name, Class: obj.Class()}
	}
	return rootcnv.H1D(h1), nil
}

// Job describes one extraction: a histogram inside a ROOT file, the gun
// card of the sample, and the output base name (without extension).
type Job struct {
	Input  string
	Hist   string
	Card   string
	Output string

	// Label names the residual on the plot axis, e.g. "d0".
	Label string

	Subsystem string
	Layer     int
	Radius    float64
}

// Extractor runs jobs. The zero value is ready to use.
type Extractor struct {
	Log *zap.Logger

	// NoPlots skips the png/pdf artifacts.
	NoPlots bool
}

func (e *Extractor) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

// Do runs a job, writing <Output>.png, <Output>.pdf and <Output>.json.
func (e *Extractor) Do(job Job) (Result, error) {
	log := e.logger().With(zap.String("input", job.Input), zap.String("hist", job.Hist))

	h, err := Load(job.Input, job.Hist)
	if err != nil {
		return Result{}, err
	}
	c, err := card.ReadFile(job.Card)
	if err != nil {
		return Result{}, fmt.Errorf("resolution: gun card: %w", err)
	}

	res, err := Compute(h)
	if err != nil {
		return Result{}, fmt.Errorf("resolution: %s in %s: %w", job.Hist, job.Input, err)
	}
	if res.FitErr != nil {
		log.Warn("no gaussian width, writing null sigma", zap.Error(res.FitErr))
	}

	rec, collisions := res.Record(Meta{
		Subsystem: job.Subsystem,
		Layer:     job.Layer,
		Radius:    job.Radius,
		Card:      c,
	})
	for _, k := range collisions {
		log.Warn("record key written twice, keeping last value", zap.String("key", k), zap.String("card", job.Card))
	}

	if !e.NoPlots {
		label := job.Label
		if label == "" {
			label = job.Hist
		}
		if err := Plot(h, res, label, job.Output); err != nil {
			return res, err
		}
	}
	if err := rec.WriteFile(job.Output + ".json"); err != nil {
		return res, fmt.Errorf("resolution: could not write record: %w", err)
	}

	log.Debug("extracted",
		zap.Float64("rms", res.RMS),
		zap.Float64("sigma", res.Fit.Sigma),
		zap.Float64("res_quantile", res.ResQuantile),
		zap.Float64("sigma_FWHM", res.FWHM),
	)
	return res, nil
}
