package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"specview/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failures(n int) []domain.FailureRecord {
	out := make([]domain.FailureRecord, n)
	for i := range out {
		out[i] = domain.FailureRecord{TestName: "t", Expectations: []domain.Expectation{{Message: "m"}}}
	}
	return out
}

func TestRecorder_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)

	rec.Observe(domain.Snapshot{Phase: domain.PhaseRunning, TestsStarted: true, TotalTests: 3})
	rec.Observe(domain.Snapshot{Phase: domain.PhaseRunning, TestsStarted: true, TotalTests: 3, PassedTests: 1})
	rec.Observe(domain.Snapshot{Phase: domain.PhaseRunning, TestsStarted: true, TotalTests: 3, PassedTests: 1, FailedTests: failures(1)})
	rec.Observe(domain.Snapshot{Phase: domain.PhaseRunning, TestsStarted: true, TotalTests: 3, PassedTests: 2, FailedTests: failures(1)})
	final := domain.Snapshot{Phase: domain.PhaseComplete, TestsStarted: true, TestsComplete: true, TotalTests: 3, PassedTests: 2, FailedTests: failures(1)}
	rec.Observe(final)
	// Replaying the same snapshot must not double count.
	rec.Observe(final)

	assert.Equal(t, float64(2), testutil.ToFloat64(rec.specsTotal.WithLabelValues(resultPassed)))
	assert.Equal(t, float64(1), testutil.ToFloat64(rec.specsTotal.WithLabelValues(resultFailed)))
	assert.Equal(t, float64(3), testutil.ToFloat64(rec.declaredSpecs))
	assert.Equal(t, float64(domain.PhaseComplete), testutil.ToFloat64(rec.phase))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)
	rec.Observe(domain.Snapshot{Phase: domain.PhaseRunning, TotalTests: 5, PassedTests: 1})

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	buf := new(strings.Builder)
	_, err = io.Copy(buf, resp.Body)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "specview_declared_specs 5")
	assert.Contains(t, buf.String(), `specview_specs_total{result="passed"} 1`)
}
