package envista

import "errors"

var (
	// ErrMalformedPayload is returned when a response is missing a required
	// key or carries a value that cannot be coerced to the expected type.
	// Decoding is all-or-nothing per payload, so a single malformed record
	// fails the whole batch.
	ErrMalformedPayload = errors.New("envista: malformed payload")

	// ErrAuthentication is returned when the API rejects the token.
	ErrAuthentication = errors.New("envista: invalid credentials")

	// ErrCommunication is returned when the API could not be reached or
	// kept failing after retries.
	ErrCommunication = errors.New("envista: communication error")
)
