package moderation

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxTextLength = 5000
	DefaultSafer  = 0.02
)

type Request struct {
	Text     string
	Safer    float64
	ClientID string
}

// NewRequest builds a validated request. A nil safer falls back to DefaultSafer.
func NewRequest(text string, safer *float64, clientID string) (*Request, error) {
	req := &Request{
		Text:     text,
		Safer:    DefaultSafer,
		ClientID: clientID,
	}
	if safer != nil {
		req.Safer = *safer
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Validate trims the text in place and checks the request bounds.
func (r *Request) Validate() error {
	r.Text = strings.TrimSpace(r.Text)
	if r.Text == "" {
		return NewValidationError("Text cannot be empty")
	}
	if utf8.RuneCountInString(r.Text) > MaxTextLength {
		return NewValidationError("Text too long. Maximum 5000 characters allowed.")
	}
	if r.Safer < 0 || r.Safer > 1 {
		return NewValidationError("safer must be a number between 0 and 1")
	}
	return nil
}

func (r *Request) Length() int {
	return utf8.RuneCountInString(r.Text)
}

// MaskClientID keeps the first ten characters of a client address for logging.
func MaskClientID(id string) string {
	return Truncate(id, 10) + "***"
}
