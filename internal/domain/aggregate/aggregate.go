// Package aggregate folds answer-log windows into per-student profiles.
//
// Fold is a pure function of (prior profile, event window): no I/O, no
// clock reads. Re-running the same window against the same prior yields an
// identical profile, and folding two ordered disjoint windows one after the
// other equals folding their union.
package aggregate

import (
	"github.com/edlane/primer/internal/domain/model"
)

// Stats summarizes one fold.
type Stats struct {
	// Folded is the number of events incorporated into the profile.
	Folded int
	// Corrupt is the number of malformed events skipped.
	Corrupt int
	// Stale is the number of events at or before the watermark, already
	// folded in a previous cycle.
	Stale int
}

// Fold incorporates every answer event newer than prior.LastUpdated into a
// copy of prior and returns the updated profile.
//
// Per-subject accuracy uses a weighted blend of the prior ratio and the
// window ratio with w = newCount/(priorCount+newCount), so history is never
// discarded. Malformed events are skipped and counted. Events at or before
// the watermark are ignored, which makes overlapping windows safe: each
// event is folded exactly once.
//
// Returns ErrInsufficientData and the prior profile unchanged when the
// window contains no foldable events.
func Fold(prior model.StudentProfile, events []model.AnswerEvent) (model.StudentProfile, Stats, error) {
	var stats Stats

	type subjectWindow struct {
		correct int
		total   int
	}
	window := make(map[string]subjectWindow)

	next := prior.Clone()
	if next.Subjects == nil {
		next = model.NewStudentProfile(prior.StudentID)
	}

	var latencySum int64
	maxTS := prior.LastUpdated

	for _, ev := range events {
		if !ev.TS.After(prior.LastUpdated) {
			stats.Stale++
			continue
		}
		if err := ev.Validate(); err != nil {
			stats.Corrupt++
			continue
		}

		w := window[ev.Subject]
		w.total++
		if ev.Correct {
			w.correct++
		}
		window[ev.Subject] = w

		modality, _ := model.ParseModality(string(ev.Modality))
		next.ModalitySeen[modality]++
		if ev.Correct {
			next.ModalityCorrect[modality]++
		}

		latencySum += ev.LatencyMS
		stats.Folded++
		if ev.TS.After(maxTS) {
			maxTS = ev.TS
		}
	}

	if stats.Folded == 0 {
		return prior, stats, ErrInsufficientData
	}

	for subject, w := range window {
		prev := next.Subjects[subject]
		windowAccuracy := float64(w.correct) / float64(w.total)

		blend := float64(w.total) / float64(prev.Total+w.total)
		if blend > 1 {
			blend = 1
		}
		accuracy := windowAccuracy
		if prev.Total > 0 {
			accuracy = prev.Accuracy*(1-blend) + windowAccuracy*blend
		}

		next.Subjects[subject] = model.SubjectStats{
			Correct:  prev.Correct + w.correct,
			Total:    prev.Total + w.total,
			Accuracy: accuracy,
		}
	}

	priorTotal := next.TotalEvents
	next.TotalEvents = priorTotal + stats.Folded
	next.MeanLatencyMS = (next.MeanLatencyMS*float64(priorTotal) + float64(latencySum)) / float64(next.TotalEvents)

	// The watermark only ever moves forward.
	if maxTS.After(next.LastUpdated) {
		next.LastUpdated = maxTS
	}

	return next, stats, nil
}
