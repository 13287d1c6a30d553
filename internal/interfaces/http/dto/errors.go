package dto

import (
	"net/http"
	"strings"
)

// Error codes follow ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for input rejected by the domain
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Session error codes
const (
	ErrCodeUnauthorized  = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired  = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid  = "ERR_TOKEN_INVALID"
	ErrCodeSessionClosed = "ERR_SESSION_CLOSED"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
)

// Console state error codes
const (
	ErrCodeInvalidState     = "ERR_INVALID_STATE"
	ErrCodeBusinessRule     = "ERR_BUSINESS_RULE"
	ErrCodeOperationPending = "ERR_OPERATION_PENDING"
	ErrCodePhaseIncomplete  = "ERR_PHASE_INCOMPLETE"
	ErrCodePayloadTooLarge  = "ERR_PAYLOAD_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeUnauthorized:  http.StatusUnauthorized,
	ErrCodeTokenExpired:  http.StatusUnauthorized,
	ErrCodeTokenInvalid:  http.StatusUnauthorized,
	ErrCodeSessionClosed: http.StatusGone,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,

	ErrCodeInvalidState:     http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:     http.StatusUnprocessableEntity,
	ErrCodeOperationPending: http.StatusConflict,
	ErrCodePhaseIncomplete:  http.StatusUnprocessableEntity,
	ErrCodePayloadTooLarge:  http.StatusRequestEntityTooLarge,

	"ERR_INVALID_NAVIGATION":    http.StatusBadRequest,
	"ERR_INVALID_PHASE":         http.StatusBadRequest,
	"ERR_INVALID_AUTH_MODE":     http.StatusBadRequest,
	"ERR_INVALID_CODE_DIGIT":    http.StatusBadRequest,
	"ERR_INVALID_CODE_POSITION": http.StatusBadRequest,
	"ERR_UNKNOWN_SECTION":       http.StatusBadRequest,
	"ERR_EMPTY_ASSET":           http.StatusBadRequest,
	"ERR_ROOM_NOT_FOUND":        http.StatusNotFound,
	"ERR_PHOTO_NOT_FOUND":       http.StatusNotFound,
	"ERR_PHOTO_REJECTED":        http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status of an error code. Unlisted domain codes
// are business rule violations; anything else is an internal error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "ERR_") {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// domainCodeMapping maps domain error codes whose API code differs from ERR_<code>
var domainCodeMapping = map[string]string{
	"PHOTO_TOO_LARGE": ErrCodePayloadTooLarge,
	"NOT_EDITING":     ErrCodeInvalidState,
	"NO_ROOM_DRAFT":   ErrCodeInvalidState,
	"WIZARD_FINISHED": ErrCodeInvalidState,
}

// NormalizeErrorCode converts a domain error code to the API format
func NormalizeErrorCode(code string) string {
	if code == "" {
		return ErrCodeUnknown
	}
	if mapped, ok := domainCodeMapping[code]; ok {
		return mapped
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}
