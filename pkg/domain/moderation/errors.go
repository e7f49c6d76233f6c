package moderation

import (
	"errors"
	"net/http"
	"time"
)

var (
	ErrValidation          = errors.New("invalid moderation request")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrUpstreamUnavailable = errors.New("all moderation strategies are unavailable")
	ErrUpstreamTimeout     = errors.New("moderation strategy timed out")
	ErrParse               = errors.New("upstream returned an unparseable payload")
	ErrInternal            = errors.New("internal moderation error")
)

// Error is a moderation failure that knows how it should be reported to the caller.
type Error struct {
	StatusCode int
	Message    string
	Details    string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidationError(message string) error {
	return &Error{StatusCode: http.StatusBadRequest, Message: message, Err: ErrValidation}
}

func NewRateLimitError(retryAfter time.Duration) error {
	return &Error{
		StatusCode: http.StatusTooManyRequests,
		Message:    "Rate limit exceeded. Please wait before making more requests.",
		RetryAfter: retryAfter,
		Err:        ErrRateLimited,
	}
}

func NewUnavailableError(details string) error {
	return &Error{
		StatusCode: http.StatusServiceUnavailable,
		Message:    "All text analysis methods are currently unavailable.",
		Details:    Truncate(details, 100),
		Err:        ErrUpstreamUnavailable,
	}
}

func NewTimeoutError(details string) error {
	return &Error{
		StatusCode: http.StatusRequestTimeout,
		Message:    "Analysis timed out. Please try with shorter text.",
		Details:    Truncate(details, 100),
		Err:        ErrUpstreamTimeout,
	}
}

// StatusCode maps any error to the HTTP status it should produce.
func StatusCode(err error) int {
	var modErr *Error
	if errors.As(err, &modErr) && modErr.StatusCode != 0 {
		return modErr.StatusCode
	}
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrUpstreamTimeout):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Truncate cuts s to at most n runes. Upstream error text goes through here before it
// reaches a log line or a response body.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
