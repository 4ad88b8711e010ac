// Package types holds the wire envelopes shared by every API response.
package types

// SuccessEnvelope wraps any successful payload under a data key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the outward shape of a failed operation: the machine-readable
// code, a human-readable message, and optional structured details such as the
// available quantity on an insufficient-stock conflict.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError under an error key.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
