package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so that errors produced by WithError still compare
// equal to the predefined value they were derived from.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Rate limit exceeded, please try again later",
		StatusCode: 429,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	// Realtime errors
	ErrEventKindRequired = &AppError{
		Code:       "EVENT_KIND_REQUIRED",
		Message:    "Event type is required",
		StatusCode: 422,
	}

	ErrEventKindUnknown = &AppError{
		Code:       "EVENT_KIND_UNKNOWN",
		Message:    "Event type is not recognized",
		StatusCode: 422,
	}

	ErrBusClosed = &AppError{
		Code:       "REALTIME_UNAVAILABLE",
		Message:    "Realtime updates are shutting down",
		StatusCode: 503,
	}

	// Escalation errors
	ErrAlertNotFound = &AppError{
		Code:       "ALERT_NOT_FOUND",
		Message:    "Alert not found",
		StatusCode: 404,
	}

	ErrInvalidAlertTransition = &AppError{
		Code:       "INVALID_ALERT_TRANSITION",
		Message:    "Alert cannot move to the requested status",
		StatusCode: 409,
	}

	// Chat errors
	ErrChatUnavailable = &AppError{
		Code:       "CHAT_UNAVAILABLE",
		Message:    "I'm having trouble connecting right now. Please try again, or if this is urgent, reach out to a counsellor or call the Tele-MANAS helpline",
		StatusCode: 503,
	}

	ErrInvalidConversation = &AppError{
		Code:       "INVALID_CONVERSATION",
		Message:    "Conversation must end with a non-empty user message",
		StatusCode: 400,
	}
)
