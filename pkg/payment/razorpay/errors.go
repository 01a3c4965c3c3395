package razorpay

import "errors"

var (
	// ErrInvalidConfig is returned when key id, secret or base URL is missing
	ErrInvalidConfig = errors.New("invalid razorpay configuration")

	// ErrInvalidRequest is returned for 400 responses
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUnauthorized is returned when the API key pair is rejected
	ErrUnauthorized = errors.New("unauthorized: invalid API key")

	// ErrNotFound is returned when the gateway does not know the entity
	ErrNotFound = errors.New("gateway entity not found")

	// ErrGateway is returned for any other non-2xx response
	ErrGateway = errors.New("payment gateway error")

	// ErrNetworkError is returned when there's a network communication error
	ErrNetworkError = errors.New("network error")

	// ErrSignatureMismatch is returned when a payment signature does not verify
	ErrSignatureMismatch = errors.New("payment signature mismatch")
)
