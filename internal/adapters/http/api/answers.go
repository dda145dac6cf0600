// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	service "github.com/edlane/primer/internal/app"
	"github.com/edlane/primer/internal/domain/model"
)

// AnswersHandler handles answer submissions.
type AnswersHandler struct {
	deps Dependencies
}

// NewAnswersHandler creates a new answers handler.
func NewAnswersHandler(deps Dependencies) *AnswersHandler {
	return &AnswersHandler{deps: deps}
}

// answerRequest mirrors the OpenAPI schema for POST /answers.
type answerRequest struct {
	EventID    string `json:"eventId,omitempty"`
	StudentID  string `json:"studentId"`
	QuestionID string `json:"questionId"`
	Subject    string `json:"subject"`
	Correct    bool   `json:"correct"`
	LatencyMS  int64  `json:"latencyMs"`
	Modality   string `json:"modality"`
	TS         string `json:"ts,omitempty"`
}

func (a answerRequest) validate() error {
	switch {
	case strings.TrimSpace(a.StudentID) == "":
		return errors.New("missing studentId")
	case strings.TrimSpace(a.QuestionID) == "":
		return errors.New("missing questionId")
	case strings.TrimSpace(a.Subject) == "":
		return errors.New("missing subject")
	case strings.TrimSpace(a.Modality) == "":
		return errors.New("missing modality")
	case a.LatencyMS < 0:
		return errors.New("negative latencyMs")
	}
	if a.TS != "" {
		if _, err := time.Parse(time.RFC3339, a.TS); err != nil {
			return errors.New("invalid ts; must be RFC3339")
		}
	}
	return nil
}

// HandlePostAnswer handles POST /answers requests.
func (h *AnswersHandler) HandlePostAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	ev := model.AnswerEvent{
		EventID:    req.EventID,
		StudentID:  req.StudentID,
		QuestionID: req.QuestionID,
		Subject:    req.Subject,
		Correct:    req.Correct,
		LatencyMS:  req.LatencyMS,
		Modality:   model.Modality(req.Modality),
	}
	if req.TS != "" {
		ts, _ := time.Parse(time.RFC3339, req.TS)
		ev.TS = ts
	}

	stored, err := h.deps.SubmitAnswer(r.Context(), ev)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", EventID: stored.EventID})
	case errors.Is(err, service.ErrDuplicateAnswer):
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", EventID: stored.EventID, Duplicate: true})
	default:
		writeError(w, http.StatusBadRequest, "bad_request", err)
	}
}
