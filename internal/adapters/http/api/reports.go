package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/pelota/internal/domain/types"
)

// ReportDependencies builds correlation reports on demand.
type ReportDependencies interface {
	// Report builds or returns the cached report for a window of days.
	// days <= 0 selects the configured default window.
	Report(ctx context.Context, days int) (types.CorrelationReport, error)
}

// ReportsHandler serves correlation reports.
type ReportsHandler struct {
	deps ReportDependencies
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(deps ReportDependencies) *ReportsHandler {
	return &ReportsHandler{deps: deps}
}

// HandleGetReport answers GET /reports/correlation?days=N. Omitting days
// selects the configured default window.
func (h *ReportsHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_report"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	days := 0
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		n, err := strconv.Atoi(daysStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		days = n
	}

	report, err := h.deps.Report(r.Context(), days)
	if err != nil {
		// The report cannot be built without the price series.
		writeError(w, http.StatusBadGateway, "upstream_unavailable", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}
