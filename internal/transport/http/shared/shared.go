// Package shared centralizes JSON response envelopes and domain error
// translation for all HTTP handlers.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "mintgate/pkg/domain-errors"
)

// statusFor maps domain error codes onto HTTP statuses. Rejections that a
// caller can fix by retrying with corrected input are 4xx; invariant and
// infrastructure failures are 500.
func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden, dErrors.CodeNotAllowlisted,
		dErrors.CodeAddressLimitReached, dErrors.CodeTokenLimitReached:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeInsufficientPayment:
		return http.StatusPaymentRequired
	case dErrors.CodeConflict, dErrors.CodeSoldOut,
		dErrors.CodeAuctionNotStarted, dErrors.CodeAuctionEnded,
		dErrors.CodeBidTooLow:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders a coded domain error as a JSON envelope.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(code))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": string(code),
	})
}

// WriteJSON renders a success payload.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
