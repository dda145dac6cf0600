// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// StyleHandler serves learning-style vectors.
type StyleHandler struct {
	deps Dependencies
}

// NewStyleHandler creates a new style handler.
func NewStyleHandler(deps Dependencies) *StyleHandler {
	return &StyleHandler{deps: deps}
}

// HandleGetStyle handles GET /learning-style/{student_id} requests.
func (h *StyleHandler) HandleGetStyle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	studentID := strings.TrimPrefix(r.URL.Path, "/learning-style/")
	if studentID == "" || strings.Contains(studentID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	res, err := h.deps.LearningStyle(r.Context(), studentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
