package llm

import "errors"

var (
	// ErrRateLimited is returned when the model service reports quota exhaustion (HTTP 429)
	ErrRateLimited = errors.New("rate limited")

	// ErrNoChoices is returned when the service answers without any completion
	ErrNoChoices = errors.New("no completion choices returned")

	// ErrAPIKeyNotSet is returned when the client is built without credentials
	ErrAPIKeyNotSet = errors.New("API key not set")
)

// IsRateLimited reports whether err is a rate-limit failure
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
