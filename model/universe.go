package model

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol-watch/detector"
	"github.com/sheikhrachel/go-gol-watch/report"
)

// diagnosticTop caps how many occurrence entries go into the debug line
const diagnosticTop = 8

var ErrInvalidParameters = errors.New("invalid universe parameters")

// Universe is the simulation state: the current grid, the generation counter,
// the live count of the last completed generation and the stagnation detector.
// It is owned by a single caller and is not safe for concurrent use.
type Universe struct {
	runID      string
	grid       *Grid
	generation uint32
	liveCells  uint32

	detector *detector.Detector
	reporter report.Reporter
	logger   *slog.Logger
	pool     *GridPool
}

// Option configures a Universe
type Option func(*universeOptions)

type universeOptions struct {
	runID      string
	reporter   report.Reporter
	logger     *slog.Logger
	pool       *GridPool
	thresholds detector.Thresholds
}

func WithReporter(r report.Reporter) Option {
	return func(o *universeOptions) { o.reporter = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *universeOptions) { o.logger = l }
}

func WithPool(p *GridPool) Option {
	return func(o *universeOptions) { o.pool = p }
}

func WithThresholds(t detector.Thresholds) Option {
	return func(o *universeOptions) { o.thresholds = t }
}

func WithRunID(id string) Option {
	return func(o *universeOptions) { o.runID = id }
}

// NewUniverse builds a width x height universe seeded so that cell i is alive
// iff i%seedA == 0 || i%seedB == 0. Zero dimensions, seeds or retention are
// rejected with ErrInvalidParameters.
func NewUniverse(width, height, seedA, seedB uint32, retention int, opts ...Option) (*Universe, error) {
	if width == 0 || height == 0 {
		return nil, errors.Wrapf(ErrInvalidParameters, "[NewUniverse] width and height must be positive, got %dx%d", width, height)
	}
	if seedA == 0 || seedB == 0 {
		return nil, errors.Wrapf(ErrInvalidParameters, "[NewUniverse] seeds must be non-zero, got %d and %d", seedA, seedB)
	}
	return NewUniverseFromGrid(NewSeededGrid(int(width), int(height), seedA, seedB), retention, opts...)
}

// NewUniverseFromGrid starts a universe from an existing grid. The universe
// takes ownership of grid.
func NewUniverseFromGrid(grid *Grid, retention int, opts ...Option) (*Universe, error) {
	if grid == nil || grid.width <= 0 || grid.height <= 0 {
		return nil, errors.Wrap(ErrInvalidParameters, "[NewUniverseFromGrid] grid must have positive dimensions")
	}
	if retention <= 0 {
		return nil, errors.Wrapf(ErrInvalidParameters, "[NewUniverseFromGrid] retention must be positive, got %d", retention)
	}

	o := universeOptions{thresholds: detector.DefaultThresholds()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}
	if o.reporter == nil {
		o.reporter = report.Nop{}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	return &Universe{
		runID:    o.runID,
		grid:     grid,
		detector: detector.New(retention, o.thresholds),
		reporter: o.reporter,
		logger:   o.logger.With(slog.String("run_id", o.runID)),
		pool:     o.pool,
	}, nil
}

// Tick advances one generation and returns the stagnation verdict for the
// grid after the step.
func (u *Universe) Tick() detector.Verdict {
	next, alive := u.grid.Next(u.pool)
	GridToPool(u.grid, u.pool)
	u.grid = next

	u.generation++
	u.liveCells = uint32(alive)

	verdict := u.detector.Observe(detector.Fingerprint(u.grid.Render()))
	distinct, peak := u.detector.Stats()

	if u.logger.Enabled(context.Background(), slog.LevelDebug) {
		snap := u.detector.Snapshot()
		u.logger.Debug("occurrence table",
			slog.Any("generation", u.generation),
			slog.Int("window", u.detector.Len()),
			slog.Int("distinct", distinct),
			slog.Any("top", snap.TopOccurrences(diagnosticTop)))
	}

	u.report(report.Progress{
		RunID:      u.runID,
		Generation: u.generation,
		LiveCells:  u.liveCells,
		Population: uint32(u.grid.CountLivingCells()),
		Verdict:    verdict,
		Distinct:   distinct,
		Peak:       peak,
	})

	return verdict
}

// report hands p to the reporter; a panicking reporter is logged, never propagated
func (u *Universe) report(p report.Progress) {
	defer func() {
		if r := recover(); r != nil {
			u.logger.Warn("progress reporter panicked",
				slog.Any("generation", p.Generation),
				slog.Any("panic", r))
		}
	}()
	u.reporter.Report(p)
}

// Render returns the text form of the current grid
func (u *Universe) Render() string { return u.grid.Render() }

func (u *Universe) RunID() string      { return u.runID }
func (u *Universe) Generation() uint32 { return u.generation }
func (u *Universe) Width() int         { return u.grid.width }
func (u *Universe) Height() int        { return u.grid.height }

// LiveCells returns the live count of the grid the last Tick started from
func (u *Universe) LiveCells() uint32 { return u.liveCells }

// Population returns the live count of the current grid
func (u *Universe) Population() int { return u.grid.CountLivingCells() }

// Grid returns a copy of the current grid
func (u *Universe) Grid() *Grid { return u.grid.Clone() }

// Snapshot returns the detector state
func (u *Universe) Snapshot() detector.Snapshot { return u.detector.Snapshot() }
