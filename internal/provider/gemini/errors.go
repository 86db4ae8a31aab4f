package gemini

import (
	"errors"
	"fmt"
)

var (
	ErrGeminiUnavailable = errors.New("gemini service unavailable")
	ErrInvalidResponse   = errors.New("invalid response from gemini")
	ErrEmptyConversation = errors.New("conversation has no messages")
)

// APIError is a non-2xx reply from the API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini returned status %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) clientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != 429
}
