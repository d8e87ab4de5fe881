package broker

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenExpired marks an authentication failure caused by an expired access token.
	ErrTokenExpired = errors.New("access token expired")
	// ErrInvalidOrder is returned when an order fails validation before it is sent.
	ErrInvalidOrder = errors.New("invalid order")
)

// ConfigError is returned when an operation needs credentials or a token that
// has not been set.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s is not set", e.Field)
}

// APIError represents a transport, HTTP or decoding failure talking to the broker.
// StatusCode is 0 when no HTTP response was received.
type APIError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("API request failed (status %d): %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("API request failed: %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	return "request failed"
}

func (e *APIError) Unwrap() error { return e.Err }

// AuthError wraps failures of token issuance or validation.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// OrderError wraps failures of order submission or modification.
type OrderError struct {
	Op  string
	Err error
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OrderError) Unwrap() error { return e.Err }

// StatusCode extracts the HTTP status code carried anywhere in err's chain.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
