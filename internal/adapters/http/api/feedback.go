// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/edlane/primer/internal/tutor"
)

// FeedbackHandler serves tutor feedback on answered questions.
type FeedbackHandler struct {
	deps Dependencies
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(deps Dependencies) *FeedbackHandler {
	return &FeedbackHandler{deps: deps}
}

type feedbackResponse struct {
	Response string `json:"response"`
}

// HandlePostFeedback handles POST /tutor/feedback requests.
func (h *FeedbackHandler) HandlePostFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req tutor.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	text, err := h.deps.Feedback(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, feedbackResponse{Response: text})
	case errors.Is(err, tutor.ErrMissingField):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
