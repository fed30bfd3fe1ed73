// Package dErrors provides coded domain errors. Services translate sentinel
// infrastructure errors (pkg/platform/sentinel) into these; the HTTP layer
// translates codes into status responses. Codes are stable API surface;
// messages are for operators, not for machine matching.
package dErrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

// Generic codes.
const (
	CodeBadRequest         Code = "bad_request"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal"
)

// Sale and auction codes. These map one-to-one onto the reasons a purchase
// or bid can be rejected without any state change.
const (
	CodeSoldOut             Code = "sold_out"
	CodeInsufficientPayment Code = "insufficient_payment"
	CodeNotAllowlisted      Code = "not_allowlisted"
	CodeAddressLimitReached Code = "address_limit_reached"
	CodeTokenLimitReached   Code = "token_limit_reached"
	CodeAuctionNotStarted   Code = "auction_not_started"
	CodeAuctionEnded        Code = "auction_ended"
	CodeBidTooLow           Code = "bid_too_low"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a coded domain error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. The cause remains
// reachable through errors.Is/As chains.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		if err == nil {
			break
		}
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability:
// dErrors.Is(err, dErrors.CodeSoldOut).
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the outermost code, or CodeInternal if err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
