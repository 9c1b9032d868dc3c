package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sheikhrachel/go-gol-watch/utils"
)

// flagValues holds command line overrides; only flags the user set are applied
type flagValues struct {
	configPath     string
	logLevel       string
	width          uint32
	height         uint32
	seedA          uint32
	seedB          uint32
	retention      int
	pattern        string
	frameRate      time.Duration
	maxGenerations int
	reportURL      string
	metricsAddr    string
	quiet          bool
	noPool         bool
	generations    int
}

func newRootCmd() *cobra.Command {
	var fv flagValues

	rootCmd := &cobra.Command{
		Use:   "gol-watch",
		Short: "Run Conway's Game of Life on a torus until it stagnates",
		Long: `gol-watch simulates a wrapping Game of Life board and stops once the
recent generations keep repeating (a still life, an oscillator or an empty board).`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&fv.configPath, "config", "c", "", "JSON or YAML config file")
	rootCmd.PersistentFlags().StringVar(&fv.logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().Uint32Var(&fv.width, "width", 0, "board width")
	rootCmd.PersistentFlags().Uint32Var(&fv.height, "height", 0, "board height")
	rootCmd.PersistentFlags().Uint32Var(&fv.seedA, "seed-a", 0, "cell i starts alive when i%seed-a == 0")
	rootCmd.PersistentFlags().Uint32Var(&fv.seedB, "seed-b", 0, "cell i starts alive when i%seed-b == 0")
	rootCmd.PersistentFlags().IntVar(&fv.retention, "retention", 0, "fingerprints kept for stagnation detection")
	rootCmd.PersistentFlags().StringVar(&fv.pattern, "pattern", "", "start from a named pattern instead of the seed rule")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Animate the board in the terminal until it stagnates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRunConfig(cmd, fv)
			if err != nil {
				return err
			}
			return runSimulation(cmd.Context(), cfg, logger, cmd.OutOrStdout())
		},
	}
	runCmd.Flags().DurationVar(&fv.frameRate, "frame-rate", 0, "pause between generations, e.g. 25ms")
	runCmd.Flags().IntVar(&fv.maxGenerations, "max-generations", 0, "stop after this many generations (0 = no limit)")
	runCmd.Flags().StringVar(&fv.reportURL, "report-url", "", "base URL for runcount progress reports")
	runCmd.Flags().StringVar(&fv.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	runCmd.Flags().BoolVarP(&fv.quiet, "quiet", "q", false, "do not draw the board")
	runCmd.Flags().BoolVar(&fv.noPool, "no-pool", false, "allocate every generation instead of recycling grids")

	fingerprintCmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the fingerprint and verdict of each generation without drawing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if fv.generations < 0 {
				return errors.Wrapf(utils.ErrInvalidConfig, "[fingerprint] generations must not be negative, got %d", fv.generations)
			}
			cfg, logger, err := loadRunConfig(cmd, fv)
			if err != nil {
				return err
			}
			return printFingerprints(cfg, fv.generations, logger, cmd.OutOrStdout())
		},
	}
	fingerprintCmd.Flags().IntVarP(&fv.generations, "generations", "n", 500, "upper bound on generations to print")

	rootCmd.AddCommand(runCmd, fingerprintCmd)
	return rootCmd
}

// loadRunConfig reads the config file (if any), applies flag overrides,
// validates the result and builds the logger
func loadRunConfig(cmd *cobra.Command, fv flagValues) (utils.Config, *slog.Logger, error) {
	cfg := utils.DefaultConfig()
	if fv.configPath != "" {
		loaded, err := utils.LoadConfig(fv.configPath)
		if err != nil {
			return cfg, nil, err
		}
		cfg = loaded
	}
	applyFlagOverrides(cmd, fv, &cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}

	level, _ := utils.ParseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func applyFlagOverrides(cmd *cobra.Command, fv flagValues, cfg *utils.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = fv.logLevel
	}
	if flags.Changed("width") {
		cfg.Width = fv.width
	}
	if flags.Changed("height") {
		cfg.Height = fv.height
	}
	if flags.Changed("seed-a") {
		cfg.SeedA = fv.seedA
	}
	if flags.Changed("seed-b") {
		cfg.SeedB = fv.seedB
	}
	if flags.Changed("retention") {
		cfg.Retention = fv.retention
	}
	if flags.Changed("pattern") {
		cfg.Pattern = fv.pattern
	}
	if flags.Changed("frame-rate") {
		cfg.FrameRate = utils.Duration(fv.frameRate)
	}
	if flags.Changed("max-generations") {
		cfg.MaxGenerations = fv.maxGenerations
	}
	if flags.Changed("report-url") {
		cfg.ReportURL = fv.reportURL
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = fv.metricsAddr
	}
	if flags.Changed("quiet") {
		cfg.Quiet = fv.quiet
	}
	if flags.Changed("no-pool") {
		cfg.UseMemoryPool = !fv.noPool
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
