package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is used for field-level validation failures
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	// ErrCodeInvalidStatus is used when a status is outside its choice set
	ErrCodeInvalidStatus = "ERR_INVALID_STATUS"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeInvalidTransition = "ERR_INVALID_TRANSITION"
	ErrCodeBusinessRule      = "ERR_BUSINESS_RULE"
)

// Commerce error codes that are reported as bad requests
const (
	ErrCodeInvalidCoupon        = "ERR_INVALID_COUPON"
	ErrCodeCouponExpired        = "ERR_COUPON_EXPIRED"
	ErrCodeEmptyOrder           = "ERR_EMPTY_ORDER"
	ErrCodePaymentExists        = "ERR_PAYMENT_EXISTS"
	ErrCodeOrderNotCancellable  = "ERR_ORDER_NOT_CANCELLABLE"
	ErrCodeInvalidSession       = "ERR_INVALID_SESSION"
	ErrCodeGatewayUnavailable   = "ERR_GATEWAY_UNAVAILABLE"
	ErrCodeRequestTooLarge      = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited          = "ERR_RATE_LIMITED"
	ErrCodeUnsupportedMediaType = "ERR_UNSUPPORTED_MEDIA_TYPE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:    http.StatusBadRequest,
	ErrCodeBadRequest:    http.StatusBadRequest,
	ErrCodeInvalidInput:  http.StatusBadRequest,
	ErrCodeInvalidJSON:   http.StatusBadRequest,
	ErrCodeInvalidStatus: http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeConflict:          http.StatusUnprocessableEntity,
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeInvalidTransition: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,

	// Checkout and payment rules -> 400 Bad Request
	ErrCodeInvalidCoupon:       http.StatusBadRequest,
	ErrCodeCouponExpired:       http.StatusBadRequest,
	ErrCodeEmptyOrder:          http.StatusBadRequest,
	ErrCodePaymentExists:       http.StatusBadRequest,
	ErrCodeOrderNotCancellable: http.StatusBadRequest,
	ErrCodeInvalidSession:      http.StatusBadRequest,

	ErrCodeGatewayUnavailable:   http.StatusBadGateway,
	ErrCodeRequestTooLarge:      http.StatusRequestEntityTooLarge,
	ErrCodeUnsupportedMediaType: http.StatusUnsupportedMediaType,
	ErrCodeRateLimited:          http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":             ErrCodeNotFound,
	"ALREADY_EXISTS":        ErrCodeAlreadyExists,
	"CONFLICT":              ErrCodeConflict,
	"INVALID_INPUT":         ErrCodeInvalidInput,
	"INVALID_STATE":         ErrCodeInvalidState,
	"INVALID_STATUS":        ErrCodeInvalidStatus,
	"INVALID_TRANSITION":    ErrCodeInvalidTransition,
	"UNAUTHORIZED":          ErrCodeUnauthorized,
	"FORBIDDEN":             ErrCodeForbidden,
	"VALIDATION_ERROR":      ErrCodeValidation,
	"BAD_REQUEST":           ErrCodeBadRequest,
	"INTERNAL_ERROR":        ErrCodeInternal,
	"INVALID_COUPON":        ErrCodeInvalidCoupon,
	"COUPON_EXPIRED":        ErrCodeCouponExpired,
	"EMPTY_ORDER":           ErrCodeEmptyOrder,
	"PAYMENT_EXISTS":        ErrCodePaymentExists,
	"ORDER_NOT_CANCELLABLE": ErrCodeOrderNotCancellable,
	"INVALID_SESSION":       ErrCodeInvalidSession,
	"GATEWAY_UNAVAILABLE":   ErrCodeGatewayUnavailable,
	"INVALID_TOTAL":         ErrCodeBusinessRule,
	"PAYMENT_INCOMPLETE":    ErrCodeBusinessRule,
}

// NormalizeErrorCode converts a domain error code to the ERR_* format.
// Codes that are already normalised or unknown are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
