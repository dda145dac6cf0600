package tutor

import (
	"context"
	"fmt"
	"strings"

	"github.com/edlane/primer/pkg/logger"
	"github.com/edlane/primer/pkg/metrics"
)

// Tutor produces feedback text. A provider is optional; without one, or when
// the provider fails, feedback degrades to the deterministic fallback rather
// than failing the request.
type Tutor struct {
	provider Provider
	logger   logger.Logger
}

// New creates a tutor. provider may be nil.
func New(provider Provider) *Tutor {
	return &Tutor{
		provider: provider,
		logger:   logger.Get().Named("tutor"),
	}
}

// Feedback returns feedback for the answered question. The error is non-nil
// only for invalid requests.
func (t *Tutor) Feedback(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	if t.provider != nil {
		text, err := t.provider.Feedback(ctx, req)
		if err == nil {
			return text, nil
		}
		t.logger.Warn(ctx, "feedback provider failed, using fallback",
			logger.Error(err),
		)
	}

	metrics.RecordTutorFallback()
	return cannedFeedback(req), nil
}

// cannedFeedback is the deterministic response used when no model is
// reachable.
func cannedFeedback(req Request) string {
	explanation := strings.TrimSpace(req.Explanation)
	if explanation != "" {
		explanation += " "
	}
	if req.Correct() {
		return fmt.Sprintf("Great job! '%s' is correct. %sKeep up the good work!",
			req.StudentAnswer, explanation)
	}
	return fmt.Sprintf("Good try! The correct answer is '%s'. %sYou'll get it next time!",
		req.CorrectAnswer, explanation)
}
