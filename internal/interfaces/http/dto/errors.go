package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeUnavailable is used when an upstream dependency cannot be reached
	ErrCodeUnavailable = "ERR_SERVICE_UNAVAILABLE"
	// ErrCodeUpstream is used when the vision model or an OAuth provider fails
	ErrCodeUpstream = "ERR_UPSTREAM"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
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
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	// ErrCodeUnsupportedMedia is used for uploads that are not PDF or image files
	ErrCodeUnsupportedMedia = "ERR_UNSUPPORTED_MEDIA_TYPE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:     http.StatusInternalServerError,
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeUnavailable: http.StatusServiceUnavailable,
	ErrCodeUpstream:    http.StatusBadGateway,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	// Input errors
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidInput:     http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeUnsupportedMedia: http.StatusUnsupportedMediaType,

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

// DomainErrorCodeMapping maps domain error codes to standardized codes.
// Module-specific codes collapse into the category that decides the status.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":           ErrCodeNotFound,
	"ALREADY_EXISTS":      ErrCodeAlreadyExists,
	"INVALID_INPUT":       ErrCodeInvalidInput,
	"INVALID_STATE":       ErrCodeInvalidState,
	"UNAUTHORIZED":        ErrCodeUnauthorized,
	"FORBIDDEN":           ErrCodeForbidden,
	"SERVICE_UNAVAILABLE": ErrCodeUnavailable,
	"VALIDATION_ERROR":    ErrCodeValidation,
	"BAD_REQUEST":         ErrCodeBadRequest,
	"INTERNAL_ERROR":      ErrCodeInternal,

	// procurement
	"INVALID_USER":             ErrCodeValidation,
	"PO_NUMBER_REQUIRED":       ErrCodeValidationRequired,
	"PO_NUMBER_TOO_LONG":       ErrCodeValidationRange,
	"INVOICE_NUMBER_REQUIRED":  ErrCodeValidationRequired,
	"INVOICE_NUMBER_TOO_LONG":  ErrCodeValidationRange,
	"INVALID_AMOUNT":           ErrCodeValidationRange,
	"INVALID_QUANTITY":         ErrCodeValidationRange,
	"INVALID_UNIT_PRICE":       ErrCodeValidationRange,
	"INVALID_LINE_DESCRIPTION": ErrCodeValidationRequired,
	"INVALID_DUE_DATE":         ErrCodeValidationRange,
	"INVALID_CURRENCY":         ErrCodeValidationFormat,

	// matching
	"INVALID_PAIR":            ErrCodeValidation,
	"INVALID_SCORE":           ErrCodeValidationRange,
	"INVALID_STATUS":          ErrCodeInvalidState,
	"REVIEWER_REQUIRED":       ErrCodeValidationRequired,
	"INVALID_WEIGHTS":         ErrCodeValidation,
	"INVALID_TOLERANCE":       ErrCodeValidationRange,
	"INVALID_THRESHOLDS":      ErrCodeValidationRange,
	"INVALID_CANDIDATE_LIMIT": ErrCodeValidationRange,

	// documents
	"INVALID_ROLE":             ErrCodeValidation,
	"INVALID_DOCUMENT_TYPE":    ErrCodeValidation,
	"FILE_NAME_REQUIRED":       ErrCodeValidationRequired,
	"EMPTY_DOCUMENT":           ErrCodeValidationRequired,
	"SOURCE_REQUIRED":          ErrCodeValidationRequired,
	"FILE_TOO_LARGE":           ErrCodeRequestTooLarge,
	"UNSUPPORTED_CONTENT_TYPE": ErrCodeUnsupportedMedia,
	"NOT_EXTRACTED":            ErrCodeBusinessRule,
	"UNSUPPORTED_IMPORT_TYPE":  ErrCodeBusinessRule,
	"DOCUMENT_NUMBER_MISSING":  ErrCodeBusinessRule,
	"EXTRACTION_FAILED":        ErrCodeUpstream,

	// connectors
	"UNSUPPORTED_PROVIDER":    ErrCodeValidation,
	"ACCESS_TOKEN_REQUIRED":   ErrCodeValidationRequired,
	"INVALID_STATE_TOKEN":     ErrCodeTokenInvalid,
	"OAUTH_EXCHANGE_FAILED":   ErrCodeUpstream,
	"PROVIDER_NOT_CONFIGURED": ErrCodeUnavailable,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}

// StatusForDomainCode returns the HTTP status for a raw domain error code.
// Unmapped domain codes are treated as business rule violations.
func StatusForDomainCode(code string) int {
	normalized := NormalizeErrorCode(code)
	if status, ok := ErrorCodeHTTPStatus[normalized]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
