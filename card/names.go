package card

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
)

// Ext is the file extension of gun cards.
const Ext = ".input"

var pdgNames = map[int]string{
	// quarks
	1: "d", -1: "d_bar",
	2: "u", -2: "u_bar",
	3: "s", -3: "s_bar",
	4: "c", -4: "c_bar",
	5: "b", -5: "b_bar",
	6: "t", -6: "t_bar",
	7: "b'", -7: "b'_bar",
	8: "t'", -8: "t'_bar",

	// leptons
	11: "e_minus", -11: "e_plus",
	12: "nu_minus", -12: "nu_e_bar",
	13: "mu_minus", -13: "mu_plus",
	14: "nu_mu", -14: "nu_mu_bar",
	15: "tau_minus", -15: "tau_plus",
	16: "nu_tau", -16: "nu_tau_bar",
	17: "tau'_minus", -17: "tau'_plus",
	18: "nu_tau'", -18: "nu_tau'_bar",
}

// ParticleName returns the file-name friendly name of a PDG id.
func ParticleName(pid int) (string, bool) {
	name, ok := pdgNames[pid]
	return name, ok
}

// Sample identifies one gun configuration by the triple encoded in its file
// names.
type Sample struct {
	Particle string
	Theta    float64
	Mom      float64
}

// SampleName returns <particle>_theta_<theta>_p_<mom>. Unknown PDG ids are
// spelled pdg<id>.
func SampleName(pid int, theta, mom float64) string {
	name, ok := ParticleName(pid)
	if !ok {
		name = "pdg" + strconv.Itoa(pid)
	}
	return Sample{Particle: name, Theta: theta, Mom: mom}.String()
}

func (s Sample) String() string {
	return fmt.Sprintf("%s_theta_%s_p_%s", s.Particle,
		strconv.FormatFloat(s.Theta, 'f', -1, 64),
		strconv.FormatFloat(s.Mom, 'f', -1, 64),
	)
}

// ParseSampleName recovers the sample triple from a file name produced by
// SampleName. Any directory and extension are ignored.
func ParseSampleName(name string) (Sample, error) {
	stem := filepath.Base(name)
	// "1.5" in mu_minus_theta_10_p_1.5 is not an extension.
	if ext := filepath.Ext(stem); strings.IndexFunc(ext, unicode.IsLetter) >= 0 {
		stem = strings.TrimSuffix(stem, ext)
	}

	i := strings.LastIndex(stem, "_theta_")
	if i <= 0 {
		return Sample{}, fmt.Errorf("card: sample name %q: no particle/theta field", name)
	}
	rest := stem[i+len("_theta_"):]
	thetaStr, momStr, ok := strings.Cut(rest, "_p_")
	if !ok {
		return Sample{}, fmt.Errorf("card: sample name %q: no momentum field", name)
	}

	theta, err := strconv.ParseFloat(thetaStr, 64)
	if err != nil {
		return Sample{}, fmt.Errorf("card: sample name %q: bad theta: %w", name, err)
	}
	mom, err := strconv.ParseFloat(momStr, 64)
	if err != nil {
		return Sample{}, fmt.Errorf("card: sample name %q: bad momentum: %w", name, err)
	}
	return Sample{Particle: stem[:i], Theta: theta, Mom: mom}, nil
}
