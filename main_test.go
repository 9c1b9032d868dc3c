package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikhrachel/go-gol-watch/utils"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestFingerprintCommandStopsOnEmptyBoard(t *testing.T) {
	out, _, err := execute(t, "fingerprint",
		"--width", "4", "--height", "4", "--seed-a", "1000", "--seed-b", "1000", "--retention", "50")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 40)
	assert.True(t, strings.HasPrefix(lines[0], "1\tcontinue\t"), lines[0])
	assert.True(t, strings.HasSuffix(lines[0], "\t1"), "one live cell before the first step")
	assert.True(t, strings.HasPrefix(lines[39], "40\tstop\t"), lines[39])
}

func TestFingerprintCommandRespectsGenerationBound(t *testing.T) {
	out, _, err := execute(t, "fingerprint", "-n", "5", "--pattern", "glider", "--width", "8", "--height", "8")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 5)
}

func TestFingerprintCommandRejectsNegativeGenerations(t *testing.T) {
	out, _, err := execute(t, "fingerprint", "-n", "-1")
	assert.ErrorIs(t, err, utils.ErrInvalidConfig)
	assert.ErrorContains(t, err, "generations must not be negative")
	assert.Empty(t, out)

	out, _, err = execute(t, "fingerprint", "-n", "0")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRunCommandQuiet(t *testing.T) {
	out, stderr, err := execute(t, "run", "--quiet", "--frame-rate", "0s",
		"--width", "5", "--height", "5", "--pattern", "blinker", "--retention", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "Stagnation detected after 40 generations")
	assert.Contains(t, stderr, "stagnation detected")
}

func TestRunCommandGenerationLimit(t *testing.T) {
	out, _, err := execute(t, "run", "-q", "--frame-rate", "0s", "--max-generations", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Reached maximum generations limit (7)")
}

func TestRunCommandRejectsInvalidConfig(t *testing.T) {
	_, _, err := execute(t, "run", "-q", "--seed-a", "0")
	assert.ErrorIs(t, err, utils.ErrInvalidConfig)

	_, _, err = execute(t, "run", "-q", "--frame-rate", "soon")
	assert.ErrorContains(t, err, "invalid argument")

	_, _, err = execute(t, "run", "-q", "--config", "/does/not/exist.yaml")
	assert.ErrorContains(t, err, "failed to read file")
}

func TestFrameRateFlagOverridesConfig(t *testing.T) {
	cmd := newRootCmd()
	run, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)
	require.NoError(t, run.ParseFlags([]string{"--frame-rate", "150ms"}))

	fv := flagValues{frameRate: 150 * time.Millisecond}
	cfg := utils.DefaultConfig()
	applyFlagOverrides(run, fv, &cfg)
	assert.Equal(t, 150*time.Millisecond, cfg.FrameRate.Std())

	untouched := utils.DefaultConfig()
	applyFlagOverrides(newRootCmd(), flagValues{frameRate: time.Hour}, &untouched)
	assert.Equal(t, utils.DefaultConfig().FrameRate, untouched.FrameRate)
}

func TestRunCommandUnknownPattern(t *testing.T) {
	_, _, err := execute(t, "run", "-q", "--pattern", "spaceship")
	assert.ErrorContains(t, err, "unknown pattern")
}

// progressSink records the request paths it receives and answers with status
type progressSink struct {
	mu     sync.Mutex
	paths  []string
	status int
}

func (s *progressSink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.paths = append(s.paths, r.URL.Path)
	s.mu.Unlock()
	w.WriteHeader(s.status)
}

func (s *progressSink) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

func emptyBoardConfig(reportURL string) utils.Config {
	cfg := utils.DefaultConfig()
	cfg.Width, cfg.Height = 4, 4
	cfg.SeedA, cfg.SeedB = 1000, 1000
	cfg.Retention = 50
	cfg.FrameRate = 0
	cfg.Quiet = true
	cfg.ReportURL = reportURL
	return cfg
}

func TestRunSimulationDeliversStopGenerationReport(t *testing.T) {
	sink := &progressSink{status: http.StatusOK}
	srv := httptest.NewServer(sink)
	defer srv.Close()

	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, runSimulation(context.Background(), emptyBoardConfig(srv.URL), logger, &out))
	assert.Contains(t, out.String(), "Stagnation detected after 40 generations")

	paths := sink.received()
	require.Len(t, paths, 40)
	assert.Equal(t, "/runcount/1/1", paths[0])
	assert.Equal(t, "/runcount/40/0", paths[39])
}

func TestRunSimulationSurvivesFailingProgressSink(t *testing.T) {
	sink := &progressSink{status: http.StatusServiceUnavailable}
	srv := httptest.NewServer(sink)
	defer srv.Close()

	var out, logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	require.NoError(t, runSimulation(context.Background(), emptyBoardConfig(srv.URL), logger, &out))

	assert.Contains(t, out.String(), "Stagnation detected after 40 generations")
	assert.Len(t, sink.received(), 40)
	assert.Contains(t, logs.String(), "progress report failed")
}

func TestRunSimulationHonoursCancellation(t *testing.T) {
	cfg := utils.DefaultConfig()
	cfg.Quiet = true
	cfg.FrameRate = utils.Duration(1 << 40)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, runSimulation(ctx, cfg, logger, io.Discard))
}
