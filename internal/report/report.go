// Package report builds per-student progress summaries over a date range.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/edlane/primer/internal/adapters/repository"
	"github.com/edlane/primer/internal/domain/aggregate"
	"github.com/edlane/primer/internal/domain/model"
	"github.com/edlane/primer/internal/domain/style"
	"github.com/edlane/primer/pkg/logger"
	"github.com/edlane/primer/pkg/metrics"
)

// Report summarizes a student's answers between From and To inclusive.
type Report struct {
	StudentID     string                        `json:"studentId"`
	From          time.Time                     `json:"from"`
	To            time.Time                     `json:"to"`
	TotalAnswers  int                           `json:"totalAnswers"`
	CorrectCount  int                           `json:"correctCount"`
	Accuracy      float64                       `json:"accuracy"`
	Subjects      map[string]model.SubjectStats `json:"subjects"`
	MeanLatencyMS float64                       `json:"meanLatencyMs"`
	P50LatencyMS  int64                         `json:"p50LatencyMs"`
	Style         style.Vector                  `json:"learningStyle"`
	DominantStyle model.Modality                `json:"dominantStyle"`
	GeneratedAt   time.Time                     `json:"generatedAt"`
}

// Builder reads the answer log and assembles reports.
type Builder struct {
	log    repository.EventLog
	logger logger.Logger
}

// NewBuilder creates a report builder over the answer log.
func NewBuilder(log repository.EventLog) *Builder {
	return &Builder{
		log:    log,
		logger: logger.Get().Named("report"),
	}
}

// Build computes the report for one student over [from, to]. The range is
// folded from scratch so the report reflects exactly the period asked for,
// independent of the live profile.
func (b *Builder) Build(ctx context.Context, studentID string, from, to time.Time) (Report, error) {
	if to.Before(from) {
		return Report{}, fmt.Errorf("%w: %s after %s", ErrBadRange, from.Format(time.RFC3339), to.Format(time.RFC3339))
	}

	events, err := b.log.EventsInRange(ctx, studentID, from, to)
	if err != nil {
		metrics.RecordErrorByComponent("report", "query")
		return Report{}, fmt.Errorf("reading answer log: %w", err)
	}
	if len(events) == 0 {
		return Report{}, ErrEmptyRange
	}

	profile, stats, err := aggregate.Fold(model.NewStudentProfile(studentID), events)
	if err != nil {
		return Report{}, fmt.Errorf("folding range: %w", err)
	}
	if stats.Corrupt > 0 {
		b.logger.Warn(ctx, "corrupt events excluded from report",
			logger.String("studentID", studentID),
			logger.Int("corrupt", stats.Corrupt),
		)
	}

	correct := 0
	latencies := make([]int64, 0, len(events))
	for _, ev := range events {
		if ev.Validate() != nil {
			continue
		}
		if ev.Correct {
			correct++
		}
		latencies = append(latencies, ev.LatencyMS)
	}

	vec := style.Classify(profile)
	r := Report{
		StudentID:     studentID,
		From:          from,
		To:            to,
		TotalAnswers:  stats.Folded,
		CorrectCount:  correct,
		Accuracy:      float64(correct) / float64(stats.Folded),
		Subjects:      profile.Subjects,
		MeanLatencyMS: profile.MeanLatencyMS,
		P50LatencyMS:  median(latencies),
		Style:         vec,
		DominantStyle: vec.Dominant(),
		GeneratedAt:   time.Now().UTC(),
	}

	metrics.RecordReportGenerated()
	return r, nil
}

// median returns the lower median of the latencies.
func median(v []int64) int64 {
	if len(v) == 0 {
		return 0
	}
	sorted := make([]int64, len(v))
	copy(sorted, v)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[(len(sorted)-1)/2]
}
