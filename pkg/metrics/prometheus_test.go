package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := New()

	r.RecordScan("ok", 3*time.Second)
	r.RecordScan("ok", time.Second)
	r.RecordRow("ok", "2330.TW", 86)
	r.RecordRow("no_data", "9999.TW", 0)
	r.RecordFetch("ok", 120*time.Millisecond)
	r.RecordHTTP("/api/scans", http.MethodPost, 201)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.scansTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.instrumentsRows.WithLabelValues("no_data")))
	assert.Equal(t, 86.0, testutil.ToFloat64(r.lastTotalScore.WithLabelValues("2330.TW")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.httpRequests.WithLabelValues("/api/scans", "POST", "2xx")))
}

func TestIndependentRegistries(t *testing.T) {
	// two recorders must not collide on registration
	a, b := New(), New()
	a.RecordScan("ok", time.Second)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.scansTotal.WithLabelValues("ok")))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.RecordScan("ok", time.Second)
	r.RecordRow("ok", "2330.TW", 1)
	r.RecordFetch("ok", time.Second)
	r.RecordHTTP("/", "GET", 200)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerExposition(t *testing.T) {
	r := New()
	r.RecordScan("cancelled", time.Second)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `swingscan_scans_total{outcome="cancelled"} 1`))
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(200))
	assert.Equal(t, "3xx", statusClass(304))
	assert.Equal(t, "4xx", statusClass(404))
	assert.Equal(t, "5xx", statusClass(503))
}
