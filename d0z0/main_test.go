package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/decibelcooper/d0z0/config"
	"github.com/decibelcooper/d0z0/pipeline"
)

func TestExitCode(t *testing.T) {
	failed := &pipeline.CommandError{Name: "DelphesHepMC_EDM4HEP", Code: 3}
	assert.Equal(t, 3, exitCode(fmt.Errorf("pipeline: simulate IDEA_base25: %w", failed)))
	assert.Equal(t, 1, exitCode(&pipeline.CommandError{Name: "missing", Code: -1}))
	assert.Equal(t, 1, exitCode(errors.New("config: invalid")))
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Base = dir
	cfg.Gun.Thetas = []float64{10, 90}
	cfg.Gun.Momenta = []float64{1, 5, 10}
	cfg.Detectors = []config.Detector{{Name: "IDEA_base25", Subsystem: "VTXIB", Layer: 1, Radius: 13.7}}

	raw, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(dir, "d0z0.yaml")
	require.NoError(t, os.WriteFile(path, raw, 0644))
	return path
}

func TestGunGenerate(t *testing.T) {
	path := writeConfig(t)
	require.NoError(t, execute(t, "gun", "generate", "--config", path, "--workers", "2"))

	cards, err := filepath.Glob(filepath.Join(filepath.Dir(path), "gun_input", "*.input"))
	require.NoError(t, err)
	assert.Len(t, cards, 6)
	assert.Equal(t, 2, cfg.Workers)
}

func TestInitWritesConfig(t *testing.T) {
	path := writeConfig(t)
	out := filepath.Join(t.TempDir(), "copy.yaml")
	require.NoError(t, execute(t, "init", out, "--config", path))

	got, err := config.Load(out)
	require.NoError(t, err)
	require.Len(t, got.Detectors, 1)
	assert.Equal(t, "IDEA_base25", got.Detectors[0].Name)
	assert.Equal(t, []float64{10, 90}, got.Gun.Thetas)
}

func TestUnknownDetector(t *testing.T) {
	path := writeConfig(t)
	err := execute(t, "simulate", "--config", path, "--detector", "CLD_2T", "--dry-run")
	assert.Error(t, err)
	detectors = nil
}
