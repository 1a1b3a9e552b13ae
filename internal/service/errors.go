package service

import (
	"errors"

	"github.com/lendops/query-management-api/internal/models"
)

// ServiceError carries an error code that handlers translate into an HTTP
// status via models.HTTPStatusForErrorCode
type ServiceError struct {
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewValidationError creates a 400-class error
func NewValidationError(message string) *ServiceError {
	return &ServiceError{Code: models.ErrCodeValidationError, Message: message}
}

// NewNotFoundError creates a 404-class error
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{Code: models.ErrCodeQueryNotFound, Message: message}
}

// NewForbiddenError creates a 403-class error
func NewForbiddenError(message string) *ServiceError {
	return &ServiceError{Code: models.ErrCodeForbidden, Message: message}
}

// NewInvalidStatusError creates a 409-class error
func NewInvalidStatusError(message string) *ServiceError {
	return &ServiceError{Code: models.ErrCodeInvalidStatus, Message: message}
}

// AsServiceError unwraps err into a ServiceError when possible
func AsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}
