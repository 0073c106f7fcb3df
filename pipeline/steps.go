package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/decibelcooper/d0z0/card"
	"github.com/decibelcooper/d0z0/config"
	"github.com/decibelcooper/d0z0/layout"
	"github.com/decibelcooper/d0z0/resolution"
)

// Driver runs the study steps described by a configuration.
type Driver struct {
	Config *config.Config
	Cmd    Commander
	Log    *zap.Logger

	// DryRun skips in-process work that writes results. External
	// commands honour the Commander's own dry-run mode.
	DryRun bool
	// NoPlots skips the per-sample png/pdf artifacts.
	NoPlots bool
}

func (d *Driver) log() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

func (d *Driver) workers() int { return d.Config.Workers }

func (d *Driver) study() layout.Study { return d.Config.Layout() }

// GenerateCards writes one gun card per (theta, momentum) pair and returns
// their paths.
func (d *Driver) GenerateCards(ctx context.Context) ([]string, error) {
	st := d.study()
	if err := st.Create(); err != nil {
		return nil, err
	}

	gun := d.Config.Gun
	type sample struct{ theta, mom float64 }
	var samples []sample
	for _, theta := range gun.Thetas {
		for _, mom := range gun.Momenta {
			samples = append(samples, sample{theta, mom})
		}
	}

	paths := make([]string, len(samples))
	for i, s := range samples {
		paths[i] = filepath.Join(st.Inputs(), card.SampleName(gun.PID, s.theta, s.mom)+card.Ext)
	}

	d.log().Info("starting gun generator", zap.Int("cards", len(samples)))
	idx := make([]int, len(samples))
	for i := range idx {
		idx[i] = i
	}
	err := ForEach(ctx, d.workers(), idx, func(_ context.Context, i int) error {
		c := card.New(gun.NPart, samples[i].theta, samples[i].mom, gun.PID, gun.NEvents)
		if d.DryRun {
			d.log().Info("dry run", zap.String("card", paths[i]))
			return nil
		}
		if err := c.WriteFile(paths[i]); err != nil {
			return err
		}
		d.log().Debug("generated", zap.String("card", paths[i]))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// RunGun runs the gun on every card. A failing card is logged and the
// remaining cards still run; only listing the cards can fail.
func (d *Driver) RunGun(ctx context.Context) error {
	st := d.study()
	cards, err := layout.List(st.Inputs(), card.Ext)
	if err != nil {
		return fmt.Errorf("pipeline: gun cards: %w", err)
	}
	if err := st.Create(); err != nil {
		return err
	}

	gun := d.Config.Gun
	return ForEach(ctx, d.workers(), cards, func(ctx context.Context, path string) error {
		err := d.Cmd.Run(ctx, gun.Script, st.HEPMC(), gun.Executable, path, d.Config.Base)
		if err != nil {
			d.log().Error("gun failed", zap.String("card", path), zap.Error(err))
			return nil
		}
		d.log().Info("processed", zap.String("card", path))
		return nil
	})
}

// Simulate runs Delphes on every HEPMC sample for one detector.
func (d *Driver) Simulate(ctx context.Context, det config.Detector) error {
	st := d.study()
	dirs := st.Detector(det.Name)
	samples, err := layout.List(st.HEPMC(), "")
	if err != nil {
		return fmt.Errorf("pipeline: hepmc samples: %w", err)
	}

	sh := Shell{Cmd: d.Cmd, Env: d.Config.Delphes.Env}
	detCard := d.Config.DetectorCard(det)
	return ForEach(ctx, d.workers(), samples, func(ctx context.Context, hepmc string) error {
		out := filepath.Join(dirs.Root, stem(hepmc)+".root")
		return sh.Run(ctx, d.Config.Delphes.Executable, detCard, d.Config.Delphes.OutputCard, out, hepmc)
	})
}

// Analyze runs the tracking analysis on every simulated file of one
// detector.
func (d *Driver) Analyze(ctx context.Context, det config.Detector) error {
	dirs := d.study().Detector(det.Name)
	files, err := layout.List(dirs.Root, "")
	if err != nil {
		return fmt.Errorf("pipeline: simulated files: %w", err)
	}

	a := d.Config.Analysis
	sh := Shell{Cmd: d.Cmd, Env: a.Env}
	return ForEach(ctx, d.workers(), files, func(ctx context.Context, in string) error {
		d.log().Info("analyzing", zap.String("script", a.Script), zap.String("sample", filepath.Base(in)))
		out := filepath.Join(dirs.Analysis, filepath.Base(in))
		return sh.Run(ctx, a.Python, a.Script, "--input", in, "--output", out)
	})
}

type extraction struct {
	input string
	param layout.Param
}

// Extract computes the resolution records of every analysis file of one
// detector, for each impact parameter.
func (d *Driver) Extract(ctx context.Context, det config.Detector) error {
	st := d.study()
	dirs := st.Detector(det.Name)
	files, err := layout.List(dirs.Analysis, "")
	if err != nil {
		return fmt.Errorf("pipeline: analysis files: %w", err)
	}

	var jobs []extraction
	for _, f := range files {
		for _, p := range layout.Params {
			jobs = append(jobs, extraction{input: f, param: p})
		}
	}

	ext := &resolution.Extractor{Log: d.log(), NoPlots: d.NoPlots}
	return ForEach(ctx, d.workers(), jobs, func(_ context.Context, j extraction) error {
		name := stem(j.input)
		job := resolution.Job{
			Input:     j.input,
			Hist:      j.param.Hist,
			Card:      filepath.Join(st.Inputs(), name+card.Ext),
			Output:    filepath.Join(dirs.Plots(j.param.Name), name),
			Label:     j.param.Name,
			Subsystem: det.Subsystem,
			Layer:     det.Layer,
			Radius:    det.Radius,
		}
		if d.DryRun {
			d.log().Info("dry run", zap.String("input", job.Input), zap.String("output", job.Output))
			return nil
		}
		_, err := ext.Do(job)
		return err
	})
}

// Run takes one detector from HEPMC samples to resolution records.
func (d *Driver) Run(ctx context.Context, det config.Detector) error {
	log := d.log().With(zap.String("detector", det.Name))
	if err := d.study().Detector(det.Name).Create(); err != nil {
		return err
	}

	steps := []struct {
		name string
		fn   func(context.Context, config.Detector) error
	}{
		{"simulate", d.Simulate},
		{"analyze", d.Analyze},
		{"extract", d.Extract},
	}
	for _, s := range steps {
		log.Info("starting", zap.String("step", s.name))
		if err := s.fn(ctx, det); err != nil {
			return fmt.Errorf("pipeline: %s %s: %w", s.name, det.Name, err)
		}
	}
	return nil
}

// RunAll runs every detector in turn.
func (d *Driver) RunAll(ctx context.Context, dets []config.Detector) error {
	for _, det := range dets {
		if err := d.Run(ctx, det); err != nil {
			return err
		}
	}
	return nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
