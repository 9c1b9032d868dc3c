package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikhrachel/go-gol-watch/detector"
	"github.com/sheikhrachel/go-gol-watch/report"
)

func TestRecorderReport(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.Report(report.Progress{Generation: 1, LiveCells: 10, Population: 4, Verdict: detector.Continue, Distinct: 1, Peak: 1})
	r.Report(report.Progress{Generation: 2, LiveCells: 4, Population: 4, Verdict: detector.Stop, Distinct: 1, Peak: 40})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Generations))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.LiveCells))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.Population))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Verdicts.WithLabelValues("continue")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Verdicts.WithLabelValues("stop")))
	assert.Equal(t, 40.0, testutil.ToFloat64(r.PeakOccurrences))
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)
	r.Report(report.Progress{Generation: 1, Verdict: detector.Continue})

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "gol_generations_total 1")
	assert.Contains(t, string(body), `gol_verdicts_total{verdict="continue"} 1`)
}
