package model

import "time"

// SubjectStats tracks correctness for a single subject.
type SubjectStats struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// StudentProfile is the per-student running aggregate. It is overwritten
// (not appended) on each aggregation cycle; LastUpdated is the watermark
// separating folded from unfolded answer events.
type StudentProfile struct {
	StudentID string `json:"student_id"`

	// Subjects maps subject name to its blended accuracy stats.
	Subjects map[string]SubjectStats `json:"subjects"`

	// ModalityCorrect and ModalitySeen count correct answers and attempts
	// per modality; the classifier derives the style vector from these.
	ModalityCorrect map[Modality]int `json:"modality_correct"`
	ModalitySeen    map[Modality]int `json:"modality_seen"`

	// Style is the most recent classifier output, normalized to sum 1.
	Style map[Modality]float64 `json:"style"`

	// MeanLatencyMS is the running mean response latency.
	MeanLatencyMS float64 `json:"mean_latency_ms"`

	TotalEvents int       `json:"total_events"`
	LastUpdated time.Time `json:"last_updated"`
}

// NewStudentProfile returns an empty profile for a student.
func NewStudentProfile(studentID string) StudentProfile {
	return StudentProfile{
		StudentID:       studentID,
		Subjects:        make(map[string]SubjectStats),
		ModalityCorrect: make(map[Modality]int),
		ModalitySeen:    make(map[Modality]int),
		Style:           make(map[Modality]float64),
	}
}

// Clone returns a deep copy. The aggregator folds into a copy so a failed
// run never mutates the stored profile.
func (p StudentProfile) Clone() StudentProfile {
	out := p
	out.Subjects = make(map[string]SubjectStats, len(p.Subjects))
	for k, v := range p.Subjects {
		out.Subjects[k] = v
	}
	out.ModalityCorrect = make(map[Modality]int, len(p.ModalityCorrect))
	for k, v := range p.ModalityCorrect {
		out.ModalityCorrect[k] = v
	}
	out.ModalitySeen = make(map[Modality]int, len(p.ModalitySeen))
	for k, v := range p.ModalitySeen {
		out.ModalitySeen[k] = v
	}
	out.Style = make(map[Modality]float64, len(p.Style))
	for k, v := range p.Style {
		out.Style[k] = v
	}
	return out
}
