package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrorKind classifies provider failures.
type ErrorKind string

const (
	KindAuth              ErrorKind = "auth"
	KindRateLimit         ErrorKind = "rate_limit"
	KindInvalidRequest    ErrorKind = "invalid_request"
	KindMalformedResponse ErrorKind = "malformed_response"
	KindContentBlocked    ErrorKind = "content_blocked"
	KindContextLength     ErrorKind = "context_length"
	KindNetwork           ErrorKind = "network"
	KindTimeout           ErrorKind = "timeout"
	KindUnavailable       ErrorKind = "unavailable"
)

// Error is a classified provider failure.
type Error struct {
	Kind       ErrorKind
	Provider   string
	Message    string
	Retryable  bool
	RetryAfter time.Duration
	Cause      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Provider, e.Kind, e.Message)
	if e.Cause != nil && e.Message == "" {
		msg = fmt.Sprintf("%s %s: %v", e.Provider, e.Kind, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds an Error whose retryability follows from kind.
func NewError(providerName string, kind ErrorKind, message string, cause error) *Error {
	return &Error{
		Kind:      kind,
		Provider:  providerName,
		Message:   message,
		Retryable: retryableKind(kind),
		Cause:     cause,
	}
}

func retryableKind(kind ErrorKind) bool {
	switch kind {
	case KindRateLimit, KindNetwork, KindTimeout, KindUnavailable:
		return true
	}
	return false
}

// IsRetryable reports whether err is a retryable provider error.
func IsRetryable(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Retryable
}

// KindOf returns the kind of a provider error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// FromStatus classifies an HTTP error response.
func FromStatus(providerName string, status int, message string, header http.Header, cause error) *Error {
	var kind ErrorKind
	lower := strings.ToLower(message)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindAuth
	case status == http.StatusTooManyRequests:
		kind = KindRateLimit
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		kind = KindTimeout
	case status == 529 || status >= 500:
		kind = KindUnavailable
	case strings.Contains(lower, "context length") || strings.Contains(lower, "context window") ||
		strings.Contains(lower, "too many tokens") || strings.Contains(lower, "prompt is too long"):
		kind = KindContextLength
	case status == http.StatusRequestEntityTooLarge:
		kind = KindContextLength
	default:
		kind = KindInvalidRequest
	}
	if message == "" {
		message = http.StatusText(status)
	}
	e := NewError(providerName, kind, message, cause)
	if header != nil {
		e.RetryAfter = ParseRetryAfter(header.Get("Retry-After"))
	}
	return e
}

// FromTransport classifies an error that occurred before an HTTP status was received.
// Context cancellation is returned unchanged.
func FromTransport(providerName string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(providerName, KindTimeout, "request timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewError(providerName, KindTimeout, "request timed out", err)
	}
	return NewError(providerName, KindNetwork, "", err)
}

// ParseRetryAfter parses a Retry-After header given in seconds or as an HTTP date.
func ParseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
