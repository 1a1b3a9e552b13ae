package models

import (
	"net/http"
	"strings"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(code, message, details string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Common error codes
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeInternalError   = "INTERNAL_ERROR"
	ErrCodeDatabaseError   = "DATABASE_ERROR"
	ErrCodeValidationError = "VALIDATION_ERROR"
	ErrCodeQueryNotFound   = "QUERY_NOT_FOUND"
	ErrCodeInvalidStatus   = "INVALID_STATUS"
)

// HTTPStatusForErrorCode returns the appropriate HTTP status code for an error code
func HTTPStatusForErrorCode(code string) int {
	switch code {
	case ErrCodeBadRequest, ErrCodeValidationError:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound, ErrCodeQueryNotFound:
		return http.StatusNotFound
	case ErrCodeConflict, ErrCodeInvalidStatus:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Teams that queries can be routed to
const (
	TeamSales      = "sales"
	TeamCredit     = "credit"
	TeamOperations = "operations"
)

// Roles carried on the X-User-Role header
const (
	RoleOperations = "operations"
	RoleSales      = "sales"
	RoleCredit     = "credit"
)

// NormalizeTeam lowercases and trims a team label ("Credit" -> "credit")
func NormalizeTeam(team string) string {
	return strings.ToLower(strings.TrimSpace(team))
}

// IsValidTeam reports whether a normalized team label is one of the known teams
func IsValidTeam(team string) bool {
	switch team {
	case TeamSales, TeamCredit, TeamOperations:
		return true
	}
	return false
}
