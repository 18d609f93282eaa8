package dto

import "net/http"

// General error codes used by the HTTP layer itself. Domain errors carry
// their own codes and are mapped through ErrorCodeHTTPStatus.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// HTTP layer errors
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	"VALIDATION_ERROR": http.StatusBadRequest,

	// Missing resources -> 404 Not Found
	"NOT_FOUND": http.StatusNotFound,

	// Conflicting writes and duplicates -> 409 Conflict
	"ALREADY_EXISTS":       http.StatusConflict,
	"ALREADY_ALLOCATED":    http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"DUPLICATE_REQUEST":    http.StatusConflict,

	// Business rule violations -> 422 Unprocessable Entity
	"INVALID_STATE":           http.StatusUnprocessableEntity,
	"EXCEEDS_OUTSTANDING":     http.StatusUnprocessableEntity,
	"EXCEEDS_UNALLOCATED":     http.StatusUnprocessableEntity,
	"LIMIT_EXCEEDED":          http.StatusUnprocessableEntity,
	"RECONCILIATION_MISMATCH": http.StatusUnprocessableEntity,

	// Input validation -> 400 Bad Request
	"INVALID_INPUT":        http.StatusBadRequest,
	"INVALID_AMOUNT":       http.StatusBadRequest,
	"INVALID_MODE":         http.StatusBadRequest,
	"INVALID_MODE_DETAILS": http.StatusBadRequest,
	"INVALID_REASON":       http.StatusBadRequest,
	"INVALID_USER":         http.StatusBadRequest,
	"INVALID_BOOKING":      http.StatusBadRequest,
	"INVALID_MANAGER":      http.StatusBadRequest,
	"INVALID_PROVIDER":     http.StatusBadRequest,
	"INVALID_REFERENCE":    http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
