// Package style derives a learning-style vector from an aggregated profile.
package style

import (
	"time"

	"github.com/edlane/primer/internal/domain/model"
)

// laplaceAlpha is the add-one smoothing constant. It keeps every modality
// above zero weight until real observations arrive.
const laplaceAlpha = 1.0

// Vector is a normalized weight per modality; entries sum to 1.
type Vector map[model.Modality]float64

// Sum returns the total weight, which should always be 1 within tolerance.
func (v Vector) Sum() float64 {
	var total float64
	for _, w := range v {
		total += w
	}
	return total
}

// Dominant returns the highest-weight modality. Ties resolve in the fixed
// modality order, so the result is deterministic.
func (v Vector) Dominant() model.Modality {
	best := model.ModalityVisual
	bestWeight := -1.0
	for _, m := range model.Modalities() {
		if w := v[m]; w > bestWeight {
			best = m
			bestWeight = w
		}
	}
	return best
}

// Result is the classifier output served to callers: the vector plus the
// provenance a client needs to judge its freshness.
type Result struct {
	StudentID   string         `json:"studentId"`
	Style       Vector         `json:"style"`
	Dominant    model.Modality `json:"dominantStyle"`
	SampleSize  int            `json:"sampleSize"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

// Classify maps a profile to its style vector: the Laplace-smoothed
// frequency of correct answers per modality. Pure computation, no I/O,
// deterministic for identical input.
func Classify(profile model.StudentProfile) Vector {
	modalities := model.Modalities()

	var totalCorrect float64
	for _, m := range modalities {
		totalCorrect += float64(profile.ModalityCorrect[m])
	}

	denominator := totalCorrect + laplaceAlpha*float64(len(modalities))
	out := make(Vector, len(modalities))
	for _, m := range modalities {
		out[m] = (float64(profile.ModalityCorrect[m]) + laplaceAlpha) / denominator
	}
	return out
}
