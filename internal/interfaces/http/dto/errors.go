package dto

import "net/http"

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation and input error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Resource error codes
const (
	ErrCodeNotFound       = "ERR_NOT_FOUND"
	ErrCodeVendorNotFound = "ERR_VENDOR_NOT_FOUND"
	ErrCodeRateNotFound   = "ERR_RATE_NOT_FOUND"
	ErrCodeAlreadyExists  = "ERR_ALREADY_EXISTS"
	ErrCodeConflict       = "ERR_CONFLICT"
	ErrCodeAliasConflict  = "ERR_ALIAS_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeZoneOverlap  = "ERR_ZONE_OVERLAP"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeNotFound:       http.StatusNotFound,
	ErrCodeVendorNotFound: http.StatusNotFound,
	ErrCodeRateNotFound:   http.StatusNotFound,
	ErrCodeAlreadyExists:  http.StatusConflict,
	ErrCodeConflict:       http.StatusConflict,
	ErrCodeAliasConflict:  http.StatusConflict,

	ErrCodeInvalidState: http.StatusConflict,
	ErrCodeZoneOverlap:  http.StatusUnprocessableEntity,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the HTTP-facing codes.
// Domain constructors emit narrow codes (INVALID_PERIOD, INVALID_ALIAS, ...)
// that all resolve to invalid-input at the boundary.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":           ErrCodeNotFound,
	"VENDOR_NOT_FOUND":    ErrCodeVendorNotFound,
	"RATE_NOT_FOUND":      ErrCodeRateNotFound,
	"ALREADY_EXISTS":      ErrCodeAlreadyExists,
	"ALIAS_CONFLICT":      ErrCodeAliasConflict,
	"INVALID_STATE":       ErrCodeInvalidState,
	"ZONE_OVERLAP":        ErrCodeZoneOverlap,
	"INVALID_INPUT":       ErrCodeInvalidInput,
	"INVALID_ALIAS":       ErrCodeInvalidInput,
	"INVALID_PERIOD":      ErrCodeInvalidInput,
	"INVALID_SKU_GROUP":   ErrCodeInvalidInput,
	"INVALID_SOURCE_TYPE": ErrCodeInvalidInput,
	"INVALID_VENDOR_ID":   ErrCodeInvalidInput,
	"INVALID_VENDOR_NAME": ErrCodeInvalidInput,
	"INVALID_ZONE_BAND":   ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a domain error code to the HTTP-facing format.
// If the code is already in the new format or unknown, returns it as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
