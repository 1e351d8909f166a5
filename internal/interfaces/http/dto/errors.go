package dto

import "net/http"

// Error codes produced by the HTTP layer itself
const (
	ErrCodeBadRequest  = "BAD_REQUEST"
	ErrCodeInvalidJSON = "INVALID_JSON"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeInternal    = "INTERNAL_ERROR"

	// ErrCodePaymentDeclined is used when the gateway refused the charge
	ErrCodePaymentDeclined = "PAYMENT_DECLINED"
	// ErrCodeCardRejected is used when the gateway refused to register a card
	ErrCodeCardRejected = "CARD_REGISTRATION_FAILED"
)

// ErrorCodeHTTPStatus maps domain and HTTP-layer error codes to status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Input errors
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	"INVALID_INPUT":    http.StatusBadRequest,
	"INVALID_AMOUNT":   http.StatusBadRequest,
	"INVALID_DOCUMENT": http.StatusBadRequest,
	"INVALID_CARD":     http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:          http.StatusNotFound,
	"PLAN_NOT_FOUND":         http.StatusNotFound,
	"SUBSCRIPTION_NOT_FOUND": http.StatusNotFound,
	"INVOICE_NOT_FOUND":      http.StatusNotFound,
	"ALREADY_EXISTS":         http.StatusConflict,
	"CONCURRENCY_CONFLICT":   http.StatusConflict,

	// Business rule errors
	"INVALID_STATE":             http.StatusUnprocessableEntity,
	"INVALID_PLAN_CHANGE":       http.StatusUnprocessableEntity,
	"INVALID_CANCELLATION":      http.StatusUnprocessableEntity,
	"INVOICE_ALREADY_FINALIZED": http.StatusUnprocessableEntity,
	"CARD_EXPIRED":              http.StatusUnprocessableEntity,
	"INVALID_BILLING_PERIOD":    http.StatusUnprocessableEntity,
	"INVALID_CYCLE_WINDOW":      http.StatusUnprocessableEntity,
	"CURRENCY_MISMATCH":         http.StatusUnprocessableEntity,

	// Payment outcomes
	ErrCodePaymentDeclined: http.StatusPaymentRequired,
	ErrCodeCardRejected:    http.StatusUnprocessableEntity,

	// General errors
	ErrCodeInternal: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
