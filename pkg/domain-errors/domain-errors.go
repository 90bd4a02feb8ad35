package domainerrors

import "errors"

// Code represents a caller-visible failure category independent of transport
// details. These codes describe what went wrong in payment terms, not in HTTP
// terms, so callers never have to inspect raw status codes.
type Code string

const (
	// Raised before any network traffic.
	CodeCarrierNotFound         Code = "carrier_not_found"
	CodeInvalidPhone            Code = "invalid_phone"
	CodeInvalidInput            Code = "invalid_input"
	CodeInvalidReferenceFactory Code = "invalid_reference_factory"
	CodeOperationNotSupported   Code = "operation_not_supported"

	// Mapped from gateway responses.
	CodeInvalidCredentials Code = "invalid_credentials" // 401
	CodeInvalidCarrierID   Code = "invalid_carrier_id"  // 404, or a per-carrier alias
	CodeAccountNotFound    Code = "account_not_found"   // 417, no mobile-money account
	CodeGatewayUnavailable Code = "gateway_unavailable" // 5xx

	// Transport level.
	CodeRequestFailed Code = "request_failed"
	CodeCancelled     Code = "cancelled"

	CodeInternal Code = "internal_error"
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, gateway, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		// Preserve the original domain code, update message
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf extracts the domain code from an error chain, or CodeInternal when
// the error carries no domain code.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
