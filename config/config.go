// Package config loads the YAML description of a study: where samples and
// results live, how the external tools are invoked, and which detector
// variants are compared.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/decibelcooper/d0z0/layout"
)

// Config is the top-level study configuration.
type Config struct {
	// Base holds gun cards, HEPMC samples, records and plots.
	Base string `yaml:"base"`
	// Storage holds Delphes and analysis output. Defaults to Base.
	Storage string `yaml:"storage"`
	// Study names the optimization, e.g. VTXIB_r1.
	Study string `yaml:"study"`

	Workers int `yaml:"workers"`

	Gun       GunConfig      `yaml:"gun"`
	Delphes   DelphesConfig  `yaml:"delphes"`
	Analysis  AnalysisConfig `yaml:"analysis"`
	Detectors []Detector     `yaml:"detectors"`
}

// GunConfig describes the particle-gun scan.
type GunConfig struct {
	PID     int       `yaml:"pid"`
	NPart   int       `yaml:"npart"`
	NEvents int       `yaml:"nevents"`
	Thetas  []float64 `yaml:"thetas"`
	Momenta []float64 `yaml:"momenta"`

	// Script wraps Executable: it is called with the HEPMC directory, the
	// executable, the card and the directory to return to.
	Script     string `yaml:"script"`
	Executable string `yaml:"executable"`
}

// DelphesConfig describes the detector-response simulation.
type DelphesConfig struct {
	Env        string `yaml:"env"`
	Executable string `yaml:"executable"`
	Cards      string `yaml:"cards"`
	OutputCard string `yaml:"output_card"`
}

// AnalysisConfig describes the tracking analysis.
type AnalysisConfig struct {
	Env    string `yaml:"env"`
	Python string `yaml:"python"`
	Script string `yaml:"script"`
}

// Detector is one geometry variant.
type Detector struct {
	Name      string  `yaml:"name"`
	Subsystem string  `yaml:"subsystem"`
	Layer     int     `yaml:"layer"`
	Radius    float64 `yaml:"radius"`

	// Card overrides <delphes.cards>/<name>.tcl.
	Card string `yaml:"card"`
}

// Default returns the configuration of the VTXIB_r1 radius scan.
func Default() *Config {
	return &Config{
		Base:    ".",
		Study:   "VTXIB_r1",
		Workers: 12,
		Gun: GunConfig{
			PID:        13,
			NPart:      1,
			NEvents:    100000,
			Thetas:     []float64{10, 20, 30, 40, 50, 60, 70, 80, 90},
			Momenta:    []float64{1, 5, 10, 50, 100},
			Script:     "particleGun/run_gunHEPMC3_singularity.sh",
			Executable: "particleGun/gunHEPMC3",
		},
		Delphes: DelphesConfig{
			Env:        "particleGun/env.sh",
			Executable: "DelphesHepMC_EDM4HEP",
			Cards:      "delphes/cards",
			OutputCard: "delphes/cards/output.tcl",
		},
		Analysis: AnalysisConfig{
			Python: "python",
			Script: "delphes/analysis_trk.py",
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.resolve()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: failed to marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("D0Z0_BASE"); v != "" {
		c.Base = v
	}
	if v := os.Getenv("D0Z0_STORAGE"); v != "" {
		c.Storage = v
	}
}

// resolve makes file paths absolute relative to Base. Bare executable
// names are left for PATH lookup.
func (c *Config) resolve() {
	if abs, err := filepath.Abs(c.Base); err == nil {
		c.Base = abs
	}
	if c.Storage == "" {
		c.Storage = c.Base
	}
	for _, p := range []*string{
		&c.Storage,
		&c.Gun.Script,
		&c.Gun.Executable,
		&c.Delphes.Env,
		&c.Delphes.Cards,
		&c.Delphes.OutputCard,
		&c.Analysis.Env,
		&c.Analysis.Script,
	} {
		*p = c.path(*p)
	}
	for i := range c.Detectors {
		c.Detectors[i].Card = c.path(c.Detectors[i].Card)
	}
}

func (c *Config) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Base, p)
}

// Validate reports every missing or inconsistent field.
func (c *Config) Validate() error {
	var errs []error
	if c.Study == "" {
		errs = append(errs, errors.New("study name is empty"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if len(c.Gun.Thetas) == 0 || len(c.Gun.Momenta) == 0 {
		errs = append(errs, errors.New("gun scan needs at least one theta and one momentum"))
	}
	if c.Gun.NPart < 1 || c.Gun.NEvents < 1 {
		errs = append(errs, errors.New("gun npart and nevents must be positive"))
	}
	if c.Delphes.Executable == "" || c.Delphes.OutputCard == "" {
		errs = append(errs, errors.New("delphes executable and output card are required"))
	}
	if c.Analysis.Script == "" {
		errs = append(errs, errors.New("analysis script is required"))
	}

	seen := make(map[string]bool)
	for i, d := range c.Detectors {
		if d.Name == "" {
			errs = append(errs, fmt.Errorf("detector %d has no name", i))
			continue
		}
		if seen[d.Name] {
			errs = append(errs, fmt.Errorf("detector %s listed twice", d.Name))
		}
		seen[d.Name] = true
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// Layout returns the directory convention of the study.
func (c *Config) Layout() layout.Study {
	return layout.Study{Base: c.Base, Storage: c.Storage, Name: c.Study}
}

// DetectorCard returns the Delphes card of d.
func (c *Config) DetectorCard(d Detector) string {
	if d.Card != "" {
		return d.Card
	}
	return filepath.Join(c.Delphes.Cards, d.Name+".tcl")
}

// Select returns the detectors whose names are listed, in configuration
// order. An empty list selects every detector.
func (c *Config) Select(names []string) ([]Detector, error) {
	if len(names) == 0 {
		return c.Detectors, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []Detector
	for _, d := range c.Detectors {
		if want[d.Name] {
			out = append(out, d)
			delete(want, d.Name)
		}
	}
	for n := range want {
		return nil, fmt.Errorf("config: unknown detector %q", n)
	}
	return out, nil
}
