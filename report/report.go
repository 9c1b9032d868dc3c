// Package report forwards per-generation progress to external sinks.
//
// Reporting is best effort. A Reporter never blocks the simulation and never
// hands an error back to it; failures are logged at the boundary and dropped.
package report

import (
	"context"
	"log/slog"

	"github.com/sheikhrachel/go-gol-watch/detector"
)

// Progress describes one completed generation
type Progress struct {
	RunID      string
	Generation uint32
	// LiveCells counts the cells alive before the transition
	LiveCells  uint32
	Population uint32
	Verdict    detector.Verdict
	Distinct   int
	Peak       int
}

// Reporter receives progress after every generation
type Reporter interface {
	Report(p Progress)
}

// Nop discards every report
type Nop struct{}

func (Nop) Report(Progress) {}

// Multi fans a report out to several reporters
type Multi []Reporter

func (m Multi) Report(p Progress) {
	for _, r := range m {
		if r != nil {
			r.Report(p)
		}
	}
}

// LogReporter writes one structured line per generation
type LogReporter struct {
	Logger *slog.Logger
	Level  slog.Level
}

func (l LogReporter) Report(p Progress) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Log(context.Background(), l.Level, "generation complete",
		slog.String("run_id", p.RunID),
		slog.Any("generation", p.Generation),
		slog.Any("live_cells", p.LiveCells),
		slog.Any("population", p.Population),
		slog.String("verdict", string(p.Verdict)),
		slog.Int("distinct", p.Distinct),
		slog.Int("peak", p.Peak),
	)
}
