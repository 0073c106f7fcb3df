// Package layout encodes the directory convention shared by every step of
// a study. Nothing records where outputs live: each step finds the
// previous step's files from these paths alone.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
)

// Param is an impact parameter whose residuals are studied.
type Param struct {
	Name string // "d0" or "z0"
	Hist string // residual histogram written by the analysis, in µm
}

// Params lists the impact parameters in plotting order.
var Params = []Param{
	{Name: "d0", Hist: "RP_TRK_D0_um"},
	{Name: "z0", Hist: "RP_TRK_Z0_um"},
}

// LookupParam returns the Param with the given name.
func LookupParam(name string) (Param, error) {
	for _, p := range Params {
		if p.Name == name {
			return p, nil
		}
	}
	return Param{}, fmt.Errorf("layout: unknown impact parameter %q", name)
}

// Study roots a set of detector variants. Bulky simulation output goes
// under Storage, cards, records and plots under Base.
type Study struct {
	Base    string
	Storage string
	Name    string
}

// Inputs is the directory of gun cards, shared by every study.
func (s Study) Inputs() string { return filepath.Join(s.Base, "gun_input") }

// HEPMC is the directory of generated gun samples.
func (s Study) HEPMC() string { return filepath.Join(s.Base, "gun_hepmc") }

// Dir is the directory holding one folder per detector variant.
func (s Study) Dir() string { return filepath.Join(s.Base, s.Name) }

// PlotDir is where cross-detector plots of param go.
func (s Study) PlotDir(param string) string {
	return filepath.Join(s.Dir(), param+"_plots")
}

// Detector returns the directories of one detector variant.
func (s Study) Detector(name string) Dirs {
	return Dirs{
		Root:     filepath.Join(s.Storage, s.Name, name, "gun_root"),
		Analysis: filepath.Join(s.Storage, s.Name, name, "gun_analysis"),
		D0Plots:  RecordDir(s.Dir(), name, "d0"),
		Z0Plots:  RecordDir(s.Dir(), name, "z0"),
	}
}

// RecordDir is the directory of the param records of one detector inside
// a study directory.
func RecordDir(studyDir, detector, param string) string {
	return filepath.Join(studyDir, detector, "gun_"+param+"_plots")
}

// Dirs are the per-detector directories.
type Dirs struct {
	Root     string // Delphes output
	Analysis string // tracking analysis output
	D0Plots  string // d0 records and plots
	Z0Plots  string // z0 records and plots
}

// Plots returns the record directory of param.
func (d Dirs) Plots(param string) string {
	if param == "z0" {
		return d.Z0Plots
	}
	return d.D0Plots
}

// Create makes every directory. It is safe to call repeatedly.
func (d Dirs) Create() error {
	return mkdirs(d.Root, d.Analysis, d.D0Plots, d.Z0Plots)
}

// Create makes the shared sample directories and the cross-detector plot
// directories.
func (s Study) Create() error {
	dirs := []string{s.Inputs(), s.HEPMC()}
	for _, p := range Params {
		dirs = append(dirs, s.PlotDir(p.Name))
	}
	return mkdirs(dirs...)
}

// PlotDirs makes <dir>/<param>_plots for every param, for tools pointed
// at an arbitrary study directory.
func PlotDirs(dir string) error {
	var dirs []string
	for _, p := range Params {
		dirs = append(dirs, filepath.Join(dir, p.Name+"_plots"))
	}
	return mkdirs(dirs...)
}

func mkdirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("layout: failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Records lists the JSON records in dir, sorted by name.
func Records(dir string) ([]string, error) {
	return List(dir, ".json")
}

// List returns the paths of the regular files in dir with the given
// extension (all files when ext is empty), sorted by name.
func List(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext != "" && filepath.Ext(e.Name()) != ext {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out, nil
}
