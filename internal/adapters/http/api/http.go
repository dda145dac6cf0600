// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/edlane/primer/internal/calendar"
	"github.com/edlane/primer/internal/domain/lesson"
	"github.com/edlane/primer/internal/domain/model"
	"github.com/edlane/primer/internal/domain/style"
	"github.com/edlane/primer/internal/report"
	"github.com/edlane/primer/internal/tutor"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SubmitAnswer validates and appends one answer event, absorbing replays.
	SubmitAnswer(ctx context.Context, ev model.AnswerEvent) (model.AnswerEvent, error)

	// Read operations expose the aggregated models.
	LearningStyle(ctx context.Context, studentID string) (style.Result, error)
	LessonPlan(ctx context.Context, studentID, grade string, day time.Time) ([]lesson.Item, error)
	CalendarRange(ctx context.Context, from, to time.Time) []calendar.Entry
	Report(ctx context.Context, studentID string, from, to time.Time) (report.Report, error)

	// Feedback generates tutor feedback for an answered question.
	Feedback(ctx context.Context, req tutor.Request) (string, error)

	// RunAggregation triggers one aggregation cycle on demand.
	RunAggregation(ctx context.Context) (int, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	answersHandler     *AnswersHandler
	styleHandler       *StyleHandler
	lessonsHandler     *LessonsHandler
	calendarHandler    *CalendarHandler
	reportsHandler     *ReportsHandler
	feedbackHandler    *FeedbackHandler
	aggregationHandler *AggregationHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		answersHandler:     NewAnswersHandler(deps),
		styleHandler:       NewStyleHandler(deps),
		lessonsHandler:     NewLessonsHandler(deps),
		calendarHandler:    NewCalendarHandler(deps),
		reportsHandler:     NewReportsHandler(deps),
		feedbackHandler:    NewFeedbackHandler(deps),
		aggregationHandler: NewAggregationHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/answers", MetricsMiddleware(s.answersHandler.HandlePostAnswer, "answers"))
	mux.HandleFunc("/learning-style/", MetricsMiddleware(s.styleHandler.HandleGetStyle, "learning_style"))
	mux.HandleFunc("/lessons", MetricsMiddleware(s.lessonsHandler.HandleGetLessons, "lessons"))
	mux.HandleFunc("/calendar", MetricsMiddleware(s.calendarHandler.HandleGetCalendar, "calendar"))
	mux.HandleFunc("/reports/", MetricsMiddleware(s.reportsHandler.HandleGetReport, "reports"))
	mux.HandleFunc("/tutor/feedback", MetricsMiddleware(s.feedbackHandler.HandlePostFeedback, "tutor_feedback"))
	mux.HandleFunc("/aggregation/run", MetricsMiddleware(s.aggregationHandler.HandleRun, "aggregation_run"))
}

type ackResponse struct {
	Status    string `json:"status"`
	EventID   string `json:"eventId,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// parseDay parses a calendar date (2006-01-02) query value.
func parseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
