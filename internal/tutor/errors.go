package tutor

import "errors"

var (
	// ErrMissingField indicates a required request field is empty.
	ErrMissingField = errors.New("missing required field")
	// ErrUnknownProvider indicates an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown feedback provider")
	// ErrMissingAPIKey indicates the provider requires an API key.
	ErrMissingAPIKey = errors.New("feedback provider API key is required")
	// ErrProviderCall indicates the model call failed.
	ErrProviderCall = errors.New("feedback provider call failed")
)
