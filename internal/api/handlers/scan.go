package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/export"
	"github.com/wonny/swingscan/pkg/logger"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// Runner executes a scan. Implemented by scanner.Service.
type Runner interface {
	Run(ctx context.Context, symbols []string, progress contracts.ProgressFunc) (*contracts.ScanReport, error)
}

// ScanResponse is returned by POST /api/scans
type ScanResponse struct {
	Report   *contracts.ScanReport       `json:"report"`
	Top      []contracts.ScanResult      `json:"top"`
	ByStatus map[contracts.RowStatus]int `json:"by_status"`
	BySignal map[contracts.Signal]int    `json:"by_signal"`
	Duration string                      `json:"duration"`
}

// ScanHandler serves scan runs and stored reports
type ScanHandler struct {
	runner Runner
	repo   contracts.ReportRepository
	logger *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(runner Runner, repo contracts.ReportRepository, log *logger.Logger) *ScanHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &ScanHandler{
		runner: runner,
		repo:   repo,
		logger: log.WithField("module", "scan_handler"),
	}
}

// Create runs a scan synchronously
// POST /api/scans
func (h *ScanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := decodeRequest(r, &req); err != nil {
		respondRequestError(w, err)
		return
	}

	report, err := h.runner.Run(r.Context(), req.Symbols, nil)
	if err != nil && report == nil {
		h.logger.WithError(err).Warn("Scan failed")
		respondError(w, scanErrorStatus(err), err.Error())
		return
	}
	if err != nil {
		// client went away mid-scan; the partial report was already stored
		h.logger.WithError(err).WithField("scan_id", report.ID).Warn("Scan interrupted")
		return
	}

	respondJSON(w, http.StatusOK, newScanResponse(report, req.TopN))
}

// List returns summaries of stored reports, newest first
// GET /api/scans?limit=N
func (h *ScanHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "report store disabled")
		return
	}

	limit := defaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxListLimit {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxListLimit))
			return
		}
		limit = n
	}

	summaries, err := h.repo.ListReports(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list reports")
		respondError(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}
	if summaries == nil {
		summaries = []contracts.ReportSummary{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"reports": summaries,
		"count":   len(summaries),
	})
}

// Latest returns the most recent report
// GET /api/scans/latest
func (h *ScanHandler) Latest(w http.ResponseWriter, r *http.Request) {
	report, ok := h.load(w, r, "")
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Get returns one report
// GET /api/scans/{id}
func (h *ScanHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, ok := h.load(w, r, mux.Vars(r)["id"])
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// CSV streams a report as a spreadsheet-friendly CSV file
// GET /api/scans/{id}/csv
func (h *ScanHandler) CSV(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "latest" {
		id = ""
	}
	report, ok := h.load(w, r, id)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "swingscan_"+contracts.DayKey(report.StartedAt)+".csv"))
	if err := export.WriteCSV(w, report.Results); err != nil {
		h.logger.WithError(err).WithField("scan_id", report.ID).Error("Failed to write CSV")
	}
}

// load fetches a report by id, or the latest when id is empty
func (h *ScanHandler) load(w http.ResponseWriter, r *http.Request, id string) (*contracts.ScanReport, bool) {
	if h.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "report store disabled")
		return nil, false
	}

	var (
		report *contracts.ScanReport
		err    error
	)
	if id == "" {
		report, err = h.repo.LatestReport(r.Context())
	} else {
		report, err = h.repo.GetReport(r.Context(), id)
	}

	switch {
	case errors.Is(err, contracts.ErrNotFound):
		respondError(w, http.StatusNotFound, "report not found")
		return nil, false
	case err != nil:
		h.logger.WithError(err).WithField("scan_id", id).Error("Failed to load report")
		respondError(w, http.StatusInternalServerError, "Failed to load report")
		return nil, false
	}
	return report, true
}

func newScanResponse(report *contracts.ScanReport, topN int) ScanResponse {
	return ScanResponse{
		Report:   report,
		Top:      report.Top(topN),
		ByStatus: report.CountByStatus(),
		BySignal: report.CountBySignal(),
		Duration: report.Duration().String(),
	}
}

func scanErrorStatus(err error) int {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, contracts.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}
