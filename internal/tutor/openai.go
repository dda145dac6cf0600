package tutor

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel     = "gpt-4o-mini"
	feedbackSystem   = "You are a friendly and patient teacher for children."
	maxFeedbackToken = 256
)

// OpenAIProvider generates feedback through the OpenAI chat API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates the provider. The API key is required; the model
// defaults to a small chat model when unset.
func NewOpenAIProvider(apiKey, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = defaultModel
	}
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Feedback asks the model for feedback on the answered question.
func (p *OpenAIProvider) Feedback(ctx context.Context, req Request) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: feedbackSystem},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(req)},
		},
		Temperature: 0.7,
		MaxTokens:   maxFeedbackToken,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderCall, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", ErrProviderCall)
	}
	return resp.Choices[0].Message.Content, nil
}
