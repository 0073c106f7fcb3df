package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/decibelcooper/d0z0"
	"github.com/decibelcooper/d0z0/config"
	"github.com/decibelcooper/d0z0/pipeline"
)

var (
	cfgPath   string
	verbose   bool
	dryRun    bool
	noPlots   bool
	workers   int
	detectors []string

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "d0z0",
	Short: "Impact-parameter resolution study driver",
	Long: `d0z0 takes particle-gun samples through the detector response simulation,
the tracking analysis and the resolution extraction, once per detector variant.

The steps can be run one at a time:
  d0z0 gun generate     write the gun cards
  d0z0 gun run          run the gun on every card
  d0z0 simulate         run Delphes on every sample
  d0z0 analyze          run the tracking analysis
  d0z0 extract          extract d0 and z0 resolutions
or all detector steps at once with d0z0 run.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = d0z0.NewLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if cfg, err = config.Load(cfgPath); err != nil {
			return err
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = workers
		}
		return cfg.Validate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "d0z0.yaml", "study configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "log the commands instead of running them")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "j", pipeline.DefaultWorkers, "maximum concurrent jobs per step")
	rootCmd.PersistentFlags().StringSliceVarP(&detectors, "detector", "d", nil, "only process these detectors (default: all configured)")
	rootCmd.PersistentFlags().BoolVar(&noPlots, "no-plots", false, "skip the per-sample png/pdf plots")

	gunCmd.AddCommand(gunGenerateCmd, gunRunCmd)
	rootCmd.AddCommand(gunCmd, simulateCmd, analyzeCmd, extractCmd, runCmd, initCmd)
}

func driver() *pipeline.Driver {
	return &pipeline.Driver{
		Config:  cfg,
		Cmd:     &pipeline.Exec{Log: logger, DryRun: dryRun},
		Log:     logger,
		DryRun:  dryRun,
		NoPlots: noPlots,
	}
}

// exitCode propagates the status of a failed external tool.
func exitCode(err error) int {
	var cmdErr *pipeline.CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode() > 0 {
		return cmdErr.ExitCode()
	}
	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
