// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/edlane/primer/internal/calendar"
)

// defaultCalendarWindow is how far ahead GET /calendar looks when no range
// is given.
const defaultCalendarWindow = 30 * 24 * time.Hour

// CalendarHandler serves the school calendar.
type CalendarHandler struct {
	deps Dependencies
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(deps Dependencies) *CalendarHandler {
	return &CalendarHandler{deps: deps}
}

type calendarResponse struct {
	From     string           `json:"from"`
	To       string           `json:"to"`
	Calendar []calendar.Entry `json:"calendar"`
}

// HandleGetCalendar handles GET /calendar?from=&to= requests. Without a
// range it returns the next thirty days.
func (h *CalendarHandler) HandleGetCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	from := time.Now().UTC()
	to := from.Add(defaultCalendarWindow)

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
		to = parsed
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("to precedes from"))
		return
	}

	entries := h.deps.CalendarRange(r.Context(), from, to)
	writeJSON(w, http.StatusOK, calendarResponse{
		From:     from.Format("2006-01-02"),
		To:       to.Format("2006-01-02"),
		Calendar: entries,
	})
}
