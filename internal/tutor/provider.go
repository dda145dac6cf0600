// Package tutor generates answer feedback for students, with a model-backed
// provider and a deterministic fallback.
package tutor

import (
	"context"
	"fmt"
)

// Request carries one answered question to generate feedback for.
type Request struct {
	Grade         string `json:"grade"`
	Subject       string `json:"subject"`
	Question      string `json:"question"`
	StudentAnswer string `json:"studentAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation,omitempty"`
}

// Validate checks the fields feedback cannot be produced without.
func (r Request) Validate() error {
	switch {
	case r.Question == "":
		return fmt.Errorf("%w: question", ErrMissingField)
	case r.StudentAnswer == "":
		return fmt.Errorf("%w: studentAnswer", ErrMissingField)
	case r.CorrectAnswer == "":
		return fmt.Errorf("%w: correctAnswer", ErrMissingField)
	}
	return nil
}

// Correct reports whether the student's answer matches.
func (r Request) Correct() bool {
	return r.StudentAnswer == r.CorrectAnswer
}

// Provider produces feedback text for a request.
type Provider interface {
	Feedback(ctx context.Context, req Request) (string, error)
}

// NewProvider creates the configured provider, or nil when feedback should
// come from the deterministic fallback alone.
func NewProvider(name, apiKey, model string) (Provider, error) {
	switch name {
	case "openai":
		return NewOpenAIProvider(apiKey, model)
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
}

// buildPrompt frames the answered question for the model.
func buildPrompt(req Request) string {
	return fmt.Sprintf(
		"You are a friendly and patient teacher for a %s-grade student. "+
			"The student is learning %s. They were asked: '%s'. "+
			"They answered: '%s'. The correct answer is: '%s'. "+
			"Please provide feedback: if the student's answer is correct, praise "+
			"them and briefly explain why. If it is incorrect, gently explain the "+
			"correct answer and encourage the student to keep trying. "+
			"Keep the language simple and age-appropriate.",
		req.Grade, req.Subject, req.Question, req.StudentAnswer, req.CorrectAnswer,
	)
}
