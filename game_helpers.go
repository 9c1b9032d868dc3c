package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/go-gol-watch/detector"
	"github.com/sheikhrachel/go-gol-watch/metrics"
	"github.com/sheikhrachel/go-gol-watch/model"
	"github.com/sheikhrachel/go-gol-watch/report"
	"github.com/sheikhrachel/go-gol-watch/utils"
)

const shutdownTimeout = 5 * time.Second

// initializeGame builds the universe described by config
func initializeGame(config utils.Config, reporter report.Reporter, logger *slog.Logger) (*model.Universe, error) {
	opts := []model.Option{
		model.WithReporter(reporter),
		model.WithLogger(logger),
		model.WithThresholds(config.Thresholds),
	}
	if config.UseMemoryPool {
		opts = append(opts, model.WithPool(model.NewGridPool()))
	}

	if config.Pattern == "" {
		return model.NewUniverse(config.Width, config.Height, config.SeedA, config.SeedB, config.Retention, opts...)
	}

	pattern, err := model.LookupPattern(config.Pattern)
	if err != nil {
		return nil, err
	}
	grid := model.NewGrid(int(config.Width), int(config.Height))
	grid.Stamp(pattern, int(config.Height)/2-len(pattern)/2, int(config.Width)/2-len(pattern[0])/2)
	return model.NewUniverseFromGrid(grid, config.Retention, opts...)
}

// runSimulation steps the universe until it stagnates, hits the generation
// limit or ctx is cancelled. Progress reporting and the metrics endpoint run
// next to the loop and are shut down with it.
func runSimulation(ctx context.Context, config utils.Config, logger *slog.Logger, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)

	reporters := report.Multi{report.LogReporter{Logger: logger, Level: slog.LevelDebug}}

	var httpReporter *report.HTTPReporter
	if config.ReportURL != "" {
		httpReporter = report.NewHTTPReporter(config.ReportURL,
			report.WithTimeout(config.ReportTimeout.Std()),
			report.WithLogger(logger))
		reporters = append(reporters, httpReporter)
	}

	var registry *prometheus.Registry
	if config.MetricsAddr != "" {
		registry = prometheus.NewRegistry()
		reporters = append(reporters, metrics.NewRecorder(registry))
	}

	universe, err := initializeGame(config, reporters, logger)
	if err != nil {
		return err
	}
	displayGameInfo(config, universe, logger)

	if httpReporter != nil {
		eg.Go(func() error { return httpReporter.Run(ctx) })
	}
	if registry != nil {
		serveMetrics(ctx, eg, config.MetricsAddr, registry, logger)
	}

	eg.Go(func() error {
		defer cancel()
		return gameLoop(ctx, config, universe, logger, out)
	})

	return eg.Wait()
}

func serveMetrics(ctx context.Context, eg *errgroup.Group, addr string, registry *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	eg.Go(func() error {
		logger.Info("serving metrics", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrapf(err, "[serveMetrics] failed to listen on %s", addr)
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

func gameLoop(ctx context.Context, config utils.Config, universe *model.Universe, logger *slog.Logger, out io.Writer) error {
	var (
		renderer      = &model.TerminalRenderer{Out: out}
		stats         = utils.NewStats()
		lastFrameTime = time.Now()
	)

	for {
		if !config.Quiet {
			renderer.Clear()
			displayGameStatus(out, universe, stats)
			renderer.Display(universe)
		}

		verdict := universe.Tick()
		stats.Update(universe.Generation(), universe.Population(), time.Since(lastFrameTime))
		lastFrameTime = time.Now()

		if verdict == detector.Stop {
			snap := universe.Snapshot()
			logger.Info("stagnation detected",
				slog.Any("generation", universe.Generation()),
				slog.Int("distinct", snap.Distinct),
				slog.Int("peak", snap.Peak))
			fmt.Fprintf(out, "\nStagnation detected after %d generations\n", universe.Generation())
			return nil
		}
		if config.MaxGenerations > 0 && int(universe.Generation()) >= config.MaxGenerations {
			logger.Info("generation limit reached", slog.Int("max_generations", config.MaxGenerations))
			fmt.Fprintf(out, "\nReached maximum generations limit (%d)\n", config.MaxGenerations)
			return nil
		}

		if config.FrameRate > 0 {
			select {
			case <-ctx.Done():
				logger.Info("shutting down", slog.Any("generation", universe.Generation()))
				return nil
			case <-time.After(config.FrameRate.Std()):
			}
		} else if ctx.Err() != nil {
			return nil
		}
	}
}

// displayGameInfo logs the initial game information
func displayGameInfo(config utils.Config, universe *model.Universe, logger *slog.Logger) {
	logger.Info("starting simulation",
		slog.String("run_id", universe.RunID()),
		slog.Int("width", universe.Width()),
		slog.Int("height", universe.Height()),
		slog.Int("initial_living_cells", universe.Population()),
		slog.Int("retention", config.Retention),
		slog.Bool("memory_pool", config.UseMemoryPool))
}

// displayGameStatus shows the current game status
func displayGameStatus(out io.Writer, universe *model.Universe, stats *utils.Stats) {
	living := universe.Population()
	density := float64(living) / float64(universe.Width()*universe.Height()) * 100
	snap := universe.Snapshot()

	fmt.Fprintf(out, "Gen: %d | Living: %d | Density: %.1f%% | Fingerprints: %d distinct, peak %d\n",
		universe.Generation(), living, density, snap.Distinct, snap.Peak)
	fmt.Fprintf(out, "Performance: %.1f gen/sec | Avg Pop: %.1f | Runtime: %.1fs\n\n",
		stats.GenerationsPerSecond, stats.AveragePopulation, stats.Runtime().Seconds())
}

// printFingerprints steps without drawing and prints one line per generation:
// generation, verdict, fingerprint, live cells before the step
func printFingerprints(config utils.Config, generations int, logger *slog.Logger, out io.Writer) error {
	universe, err := initializeGame(config, report.Nop{}, logger)
	if err != nil {
		return err
	}
	for range generations {
		verdict := universe.Tick()
		fp := detector.Fingerprint(universe.Render())
		fmt.Fprintf(out, "%d\t%s\t%s\t%d\n", universe.Generation(), verdict, fp, universe.LiveCells())
		if verdict == detector.Stop {
			break
		}
	}
	return nil
}
