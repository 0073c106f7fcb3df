package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/decibelcooper/d0z0/config"
)

var gunCmd = &cobra.Command{
	Use:   "gun",
	Short: "Generate and run the particle gun",
}

var gunGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write one gun card per (theta, momentum) pair",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := driver().GenerateCards(cmd.Context())
		if err != nil {
			return err
		}
		logger.Info("all cards written", zap.Int("cards", len(paths)), zap.String("dir", cfg.Layout().Inputs()))
		return nil
	},
}

var gunRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the gun on every card; failing cards are logged and skipped",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return driver().RunGun(cmd.Context())
	},
}

// perDetector runs step for every selected detector in turn.
func perDetector(step func(d config.Detector) error) error {
	dets, err := cfg.Select(detectors)
	if err != nil {
		return err
	}
	if len(dets) == 0 {
		return fmt.Errorf("no detectors configured in %s", cfgPath)
	}
	for _, det := range dets {
		if err := cfg.Layout().Detector(det.Name).Create(); err != nil {
			return err
		}
		if err := step(det); err != nil {
			return fmt.Errorf("%s: %w", det.Name, err)
		}
	}
	return nil
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the detector response simulation on every HEPMC sample",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := driver()
		return perDetector(func(det config.Detector) error { return d.Simulate(cmd.Context(), det) })
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the tracking analysis on every simulated file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := driver()
		return perDetector(func(det config.Detector) error { return d.Analyze(cmd.Context(), det) })
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the d0 and z0 resolutions of every analysis file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := driver()
		return perDetector(func(det config.Detector) error { return d.Extract(cmd.Context(), det) })
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate, analyze and extract for every detector",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dets, err := cfg.Select(detectors)
		if err != nil {
			return err
		}
		return driver().RunAll(cmd.Context(), dets)
	},
}

var initCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Write the effective configuration as YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cfgPath
		if len(args) == 1 {
			out = args[0]
		}
		if err := cfg.Save(out); err != nil {
			return err
		}
		logger.Info("configuration written", zap.String("file", out))
		return nil
	},
}
