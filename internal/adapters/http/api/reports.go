// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/edlane/primer/internal/report"
)

// defaultReportWindow is how far back GET /reports looks when no range is
// given.
const defaultReportWindow = 7 * 24 * time.Hour

// ReportsHandler serves progress reports.
type ReportsHandler struct {
	deps Dependencies
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(deps Dependencies) *ReportsHandler {
	return &ReportsHandler{deps: deps}
}

// HandleGetReport handles GET /reports/{student_id}?from=&to= requests.
// Without a range it covers the trailing week.
func (h *ReportsHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	studentID := strings.TrimPrefix(r.URL.Path, "/reports/")
	if studentID == "" || strings.Contains(studentID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	q := r.URL.Query()
	to := time.Now().UTC()
	from := to.Add(-defaultReportWindow)

	if raw := q.Get("from"); raw != "" {
		parsed, err := parseDay(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid from; must be YYYY-MM-DD"))
			return
		}
		from = parsed
	}
	if raw := q.Get("to"); raw != "" {
		parsed, err := parseDay(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid to; must be YYYY-MM-DD"))
			return
		}
		// Include the whole named day.
		to = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	rep, err := h.deps.Report(r.Context(), studentID, from, to)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, rep)
	case errors.Is(err, report.ErrEmptyRange):
		writeError(w, http.StatusNotFound, "empty_range", err)
	case errors.Is(err, report.ErrBadRange):
		writeError(w, http.StatusBadRequest, "bad_range", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
