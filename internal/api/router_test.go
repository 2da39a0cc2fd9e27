package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/swingscan/internal/api/handlers"
	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/store"
	"github.com/wonny/swingscan/pkg/logger"
	"github.com/wonny/swingscan/pkg/metrics"
)

// fakeRunner returns a fixed report and stores it like scanner.Service
type fakeRunner struct {
	mu      sync.Mutex
	repo    contracts.ReportRepository
	symbols [][]string
	err     error
}

func (f *fakeRunner) Run(ctx context.Context, symbols []string, progress contracts.ProgressFunc) (*contracts.ScanReport, error) {
	f.mu.Lock()
	f.symbols = append(f.symbols, symbols)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	report := sampleReport()
	for i, row := range report.Results {
		if progress != nil {
			progress(i+1, len(report.Results), row.Symbol)
		}
	}
	if f.repo != nil {
		_ = f.repo.SaveReport(ctx, report)
	}
	return report, nil
}

func sampleReport() *contracts.ScanReport {
	start := time.Date(2024, 3, 1, 5, 45, 0, 0, time.UTC)
	return &contracts.ScanReport{
		ID:          "run-1",
		StartedAt:   start,
		FinishedAt:  start.Add(3 * time.Second),
		Benchmark:   "^TWII",
		Environment: contracts.MarketBull,
		Results: []contracts.ScanResult{
			{Rank: 1, Symbol: "2330.TW", Name: "台積電", Status: contracts.StatusOK, Total: 82, Signal: contracts.SignalStrongBuy, Phase: contracts.PhaseInitialUptrend},
			{Rank: 2, Symbol: "2317.TW", Name: "鴻海", Status: contracts.StatusOK, Total: 64, Signal: contracts.SignalBuy, Phase: contracts.PhaseMainUptrend},
			{Rank: 3, Symbol: "9999.TW", Name: "9999.TW", Status: contracts.StatusNoData, Reason: contracts.ReasonNoData},
		},
	}
}

func newTestRouter(t *testing.T, runner *fakeRunner, repo contracts.ReportRepository, rec *metrics.Recorder) http.Handler {
	t.Helper()
	log := logger.NewNop()
	return NewRouter(Handlers{
		Scan:   handlers.NewScanHandler(runner, repo, log),
		Stream: handlers.NewStreamHandler(runner, nil, log),
	}, rec, log)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t, &fakeRunner{}, nil, nil)
	rr := do(t, h, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
	assert.Contains(t, rr.Body.String(), `"database":"disabled"`)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealth_Database(t *testing.T) {
	log := logger.NewNop()
	for _, tt := range []struct {
		err  error
		want string
	}{
		{nil, `"database":"ok"`},
		{assert.AnError, `"status":"degraded"`},
	} {
		h := NewRouter(Handlers{
			Scan:     handlers.NewScanHandler(&fakeRunner{}, nil, log),
			Stream:   handlers.NewStreamHandler(&fakeRunner{}, nil, log),
			Database: stubPinger{err: tt.err},
		}, nil, log)
		rr := do(t, h, "GET", "/health", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), tt.want)
	}
}

func TestCreateScan(t *testing.T) {
	repo := store.NewMemory(0)
	runner := &fakeRunner{repo: repo}
	h := newTestRouter(t, runner, repo, nil)

	rr := do(t, h, "POST", "/api/scans", `{"symbols":["2330","2317.TW"],"top_n":1}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Report   contracts.ScanReport   `json:"report"`
		Top      []contracts.ScanResult `json:"top"`
		ByStatus map[string]int         `json:"by_status"`
		BySignal map[string]int         `json:"by_signal"`
		Duration string                 `json:"duration"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "run-1", resp.Report.ID)
	require.Len(t, resp.Top, 1)
	assert.Equal(t, "2330.TW", resp.Top[0].Symbol)
	assert.Equal(t, 2, resp.ByStatus["ok"])
	assert.Equal(t, 1, resp.ByStatus["no_data"])
	assert.Equal(t, "3s", resp.Duration)
	assert.Equal(t, []string{"2330", "2317.TW"}, runner.symbols[0])
}

func TestCreateScan_EmptyBodyUsesDefaults(t *testing.T) {
	runner := &fakeRunner{}
	h := newTestRouter(t, runner, nil, nil)

	rr := do(t, h, "POST", "/api/scans", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Nil(t, runner.symbols[0])
}

func TestCreateScan_Validation(t *testing.T) {
	h := newTestRouter(t, &fakeRunner{}, nil, nil)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"top_n too large", `{"top_n":101}`, "ERR_MAX"},
		{"negative top_n", `{"top_n":-1}`, "ERR_MIN"},
		{"empty symbol", `{"symbols":[""]}`, "ERR_REQUIRED"},
		{"symbol too long", `{"symbols":["` + strings.Repeat("1", 17) + `"]}`, "ERR_MAX"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, "POST", "/api/scans", tt.body)
			require.Equal(t, http.StatusBadRequest, rr.Code)

			var body handlers.RequestError
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			require.NotEmpty(t, body.Fields)
			assert.Equal(t, tt.code, body.Fields[0].Code)
		})
	}

	rr := do(t, h, "POST", "/api/scans", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid request body")
}

func TestCreateScan_RunError(t *testing.T) {
	h := newTestRouter(t, &fakeRunner{err: assert.AnError}, nil, nil)
	rr := do(t, h, "POST", "/api/scans", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), assert.AnError.Error())
}

func TestReportEndpoints(t *testing.T) {
	repo := store.NewMemory(0)
	h := newTestRouter(t, &fakeRunner{repo: repo}, repo, nil)

	// nothing stored yet
	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/api/scans/latest", "").Code)

	require.NoError(t, repo.SaveReport(context.Background(), sampleReport()))

	rr := do(t, h, "GET", "/api/scans/latest", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"id":"run-1"`)

	assert.Equal(t, http.StatusOK, do(t, h, "GET", "/api/scans/run-1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/api/scans/missing", "").Code)

	rr = do(t, h, "GET", "/api/scans?limit=5", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"count":1`)

	assert.Equal(t, http.StatusBadRequest, do(t, h, "GET", "/api/scans?limit=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "GET", "/api/scans?limit=abc", "").Code)
}

func TestReportEndpoints_StoreDisabled(t *testing.T) {
	h := newTestRouter(t, &fakeRunner{}, nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, "GET", "/api/scans/latest", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, "GET", "/api/scans", "").Code)
}

func TestCSVEndpoint(t *testing.T) {
	repo := store.NewMemory(0)
	require.NoError(t, repo.SaveReport(context.Background(), sampleReport()))
	h := newTestRouter(t, &fakeRunner{}, repo, nil)

	for _, path := range []string{"/api/scans/run-1/csv", "/api/scans/latest/csv"} {
		rr := do(t, h, "GET", path, "")
		require.Equal(t, http.StatusOK, rr.Code, path)
		assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Header().Get("Content-Disposition"), "swingscan_2024-03-01.csv")
		assert.True(t, strings.HasPrefix(rr.Body.String(), "\ufeff"))
		assert.Contains(t, rr.Body.String(), "台積電")
	}
}

func TestMetricsMiddleware(t *testing.T) {
	rec := metrics.New()
	h := newTestRouter(t, &fakeRunner{}, nil, rec)

	do(t, h, "GET", "/health", "")
	do(t, h, "GET", "/api/scans/abc", "")

	rr := do(t, h, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `route="/health"`)
	assert.Contains(t, body, `route="/api/scans/{id}"`)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(logger.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := do(t, h, "GET", "/", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Internal server error")
}

func TestScanStream(t *testing.T) {
	// metrics on, so the upgrade goes through the status recorder
	srv := httptest.NewServer(newTestRouter(t, &fakeRunner{}, nil, metrics.New()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/scan?symbols=2330,2317&top_n=5"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var frames []handlers.StreamMessage
	for {
		var msg handlers.StreamMessage
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		frames = append(frames, msg)
		if msg.Type != "progress" {
			break
		}
	}

	require.Len(t, frames, 4)
	for i := 0; i < 3; i++ {
		assert.Equal(t, "progress", frames[i].Type)
		assert.Equal(t, i+1, frames[i].Done)
		assert.Equal(t, 3, frames[i].Total)
	}
	final := frames[3]
	assert.Equal(t, "report", final.Type)
	require.NotNil(t, final.Report)
	assert.Len(t, final.Report.Top, 2)
}

func TestScanStream_RunError(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t, &fakeRunner{err: assert.AnError}, nil, nil))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/scan", nil)
	require.NoError(t, err)
	defer conn.Close()

	var msg handlers.StreamMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, assert.AnError.Error(), msg.Error)
}

func TestScanStream_BadTopN(t *testing.T) {
	h := newTestRouter(t, &fakeRunner{}, nil, nil)
	rr := do(t, h, "GET", "/ws/scan?top_n=x", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestScanStream_Origins(t *testing.T) {
	log := logger.NewNop()
	dial := func(allowed []string, origin string) (*http.Response, error) {
		srv := httptest.NewServer(NewRouter(Handlers{
			Scan:   handlers.NewScanHandler(&fakeRunner{}, nil, log),
			Stream: handlers.NewStreamHandler(&fakeRunner{}, allowed, log),
		}, nil, log))
		defer srv.Close()

		header := http.Header{"Origin": []string{origin}}
		conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/scan", header)
		if conn != nil {
			conn.Close()
		}
		return resp, err
	}

	resp, err := dial(nil, "http://evil.example")
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = dial([]string{"http://dash.example"}, "http://evil.example")
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, err = dial([]string{"http://dash.example"}, "http://dash.example")
	assert.NoError(t, err)

	_, err = dial([]string{"*"}, "http://evil.example")
	assert.NoError(t, err)
}
