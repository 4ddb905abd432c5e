// Package inputs implements the structured-input request protocol: the agent
// publishes a request_input envelope on a kind-specific topic, the client
// shows a prompt, validates the user's value, and publishes a typed response
// back with confirmed delivery.
package inputs

import (
	"errors"
	"net/url"
	"regexp"
)

// Validation errors. ErrRequired is shared by all kinds so callers can tell
// "empty" apart from "present but malformed".
var (
	ErrRequired     = errors.New("a value is required")
	ErrEmailInvalid = errors.New("enter a valid email address")
	ErrURLInvalid   = errors.New("enter a valid http or https URL")
)

// Minimal local@domain.tld shape. Anything stricter rejects addresses real
// mail servers accept.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Kind configures one structured-input exchange: where to listen, what to
// answer with, how to validate, and what the prompt shows when the request
// carries no display hints.
type Kind struct {
	Name               string
	Topic              string
	ResponseType       string
	DefaultLabel       string
	DefaultPlaceholder string
	Validate           func(value string) error
}

// EmailKind is the built-in email input exchange on the email_input topic.
func EmailKind() Kind {
	return Kind{
		Name:               "email",
		Topic:              "email_input",
		ResponseType:       "email_submitted",
		DefaultLabel:       "Enter your email",
		DefaultPlaceholder: "you@example.com",
		Validate:           ValidateEmail,
	}
}

// URLKind is the built-in URL input exchange on the url_input topic.
func URLKind() Kind {
	return Kind{
		Name:               "url",
		Topic:              "url_input",
		ResponseType:       "url_submitted",
		DefaultLabel:       "Enter a URL",
		DefaultPlaceholder: "https://example.com",
		Validate:           ValidateURL,
	}
}

// ValidateEmail accepts a trimmed value of the minimal local@domain.tld shape.
func ValidateEmail(value string) error {
	if value == "" {
		return ErrRequired
	}
	if !emailPattern.MatchString(value) {
		return ErrEmailInvalid
	}
	return nil
}

// ValidateURL accepts a trimmed absolute URL whose scheme is http or https.
func ValidateURL(value string) error {
	if value == "" {
		return ErrRequired
	}
	u, err := url.Parse(value)
	if err != nil {
		return ErrURLInvalid
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrURLInvalid
	}
	return nil
}
