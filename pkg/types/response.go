// Package types holds the wire shapes every API handler answers with.
// Successful responses wrap their payload under "data"; failures carry a
// machine-readable code plus a human message under "error".
package types

// SuccessEnvelope wraps a handler's payload for the client.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the body of a failed request. Code is one of the stable
// error codes (VALIDATION_ERROR, NOT_FOUND, ...) that clients branch on;
// Details optionally names the offending field or constraint.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError the same way SuccessEnvelope wraps data.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
