// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/edlane/primer/internal/domain/lesson"
)

// LessonsHandler serves daily lesson plans.
type LessonsHandler struct {
	deps Dependencies
}

// NewLessonsHandler creates a new lessons handler.
func NewLessonsHandler(deps Dependencies) *LessonsHandler {
	return &LessonsHandler{deps: deps}
}

type lessonPlanResponse struct {
	StudentID string        `json:"studentId"`
	Grade     string        `json:"grade"`
	Date      string        `json:"date"`
	Lessons   []lesson.Item `json:"lessons"`
}

// HandleGetLessons handles GET /lessons?studentId=&grade=&date= requests.
// Date defaults to today.
func (h *LessonsHandler) HandleGetLessons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	studentID := q.Get("studentId")
	grade := q.Get("grade")
	if studentID == "" || grade == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("studentId and grade are required"))
		return
	}

	day := time.Now().UTC()
	if raw := q.Get("date"); raw != "" {
		parsed, err := parseDay(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid date; must be YYYY-MM-DD"))
			return
		}
		day = parsed
	}

	items, err := h.deps.LessonPlan(r.Context(), studentID, grade, day)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, lessonPlanResponse{
			StudentID: studentID,
			Grade:     grade,
			Date:      day.Format("2006-01-02"),
			Lessons:   items,
		})
	case errors.Is(err, lesson.ErrNoLessonAvailable):
		writeError(w, http.StatusNotFound, "no_lesson_available", err)
	case errors.Is(err, lesson.ErrUnknownGrade):
		writeError(w, http.StatusNotFound, "unknown_grade", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
