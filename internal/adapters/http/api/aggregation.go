// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// AggregationHandler triggers on-demand aggregation cycles.
type AggregationHandler struct {
	deps Dependencies
}

// NewAggregationHandler creates a new aggregation handler.
func NewAggregationHandler(deps Dependencies) *AggregationHandler {
	return &AggregationHandler{deps: deps}
}

type aggregationResponse struct {
	Status   string `json:"status"`
	Enqueued int    `json:"enqueued"`
}

// HandleRun handles POST /aggregation/run requests. It enqueues pending
// students and returns without waiting for the workers.
func (h *AggregationHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	n, err := h.deps.RunAggregation(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusAccepted, aggregationResponse{Status: "accepted", Enqueued: n})
}
