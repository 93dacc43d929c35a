package search

import (
	"context"
	"errors"
	"strings"
)

const (
	ErrorTypeConfig      = "config"
	ErrorTypeNetwork     = "network"
	ErrorTypeTimeout     = "timeout"
	ErrorTypeRateLimit   = "rate_limit"
	ErrorTypeUpstream5xx = "upstream_5xx"
	ErrorTypeCircuitOpen = "circuit_open"
	ErrorTypeUnknown     = "unknown"
)

// ErrCircuitOpen is returned without calling upstream while the breaker is open.
var ErrCircuitOpen = errors.New("search backend unavailable, circuit open")

type TypedError struct {
	Type string
	Err  error
}

func (e *TypedError) Error() string {
	if e == nil {
		return "unknown error"
	}
	if e.Err == nil {
		return e.Type
	}
	return e.Err.Error()
}

func (e *TypedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewTypedError(errorType string, err error) error {
	if err == nil {
		return &TypedError{Type: errorType, Err: errors.New(errorType)}
	}
	return &TypedError{Type: errorType, Err: err}
}

// ClassifyError returns the error type of err, guessing from the message
// when err is not a *TypedError.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	var typed *TypedError
	if errors.As(err, &typed) && strings.TrimSpace(typed.Type) != "" {
		return typed.Type
	}
	if errors.Is(err, ErrCircuitOpen) {
		return ErrorTypeCircuitOpen
	}
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	if strings.Contains(msg, "timeout") || errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeTimeout
	}
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "network is unreachable") {
		return ErrorTypeNetwork
	}
	if strings.Contains(msg, "429") {
		return ErrorTypeRateLimit
	}
	if strings.Contains(msg, "http 5") {
		return ErrorTypeUpstream5xx
	}
	return ErrorTypeUnknown
}

// Retryable reports whether a later call may succeed without any change.
func Retryable(err error) bool {
	switch ClassifyError(err) {
	case ErrorTypeNetwork, ErrorTypeTimeout, ErrorTypeRateLimit, ErrorTypeUpstream5xx, ErrorTypeCircuitOpen:
		return true
	}
	return false
}
