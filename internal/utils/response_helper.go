package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lendops/query-management-api/internal/models"
	"github.com/lendops/query-management-api/internal/service"
)

// SendErrorResponse sends an error JSON response
func SendErrorResponse(c *gin.Context, statusCode int, errCode, message, details string) {
	c.JSON(statusCode, models.ErrorResponse{
		Code:    errCode,
		Message: message,
		Details: details,
	})
}

// SendCreatedResponse sends a 201 Created response
func SendCreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// SendOKResponse sends a 200 OK response
func SendOKResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SendBadRequestError sends a 400 Bad Request error
func SendBadRequestError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeBadRequest, message, details)
}

// SendForbiddenError sends a 403 Forbidden error
func SendForbiddenError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusForbidden, models.ErrCodeForbidden, message, "")
}

// SendNotFoundError sends a 404 Not Found error
func SendNotFoundError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusNotFound, models.ErrCodeNotFound, message, "")
}

// SendInternalServerError sends a 500 Internal Server Error
func SendInternalServerError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusInternalServerError, models.ErrCodeInternalError, message, details)
}

// SendValidationError sends a validation error response
func SendValidationError(c *gin.Context, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeValidationError, "Validation failed", details)
}

// SendServiceError maps a service-layer error onto the HTTP response.
// Typed service errors carry their own code; anything else is a 500.
func SendServiceError(c *gin.Context, err error) {
	if svcErr, ok := service.AsServiceError(err); ok {
		SendErrorResponse(c, models.HTTPStatusForErrorCode(svcErr.Code), svcErr.Code, svcErr.Message, "")
		return
	}
	SendInternalServerError(c, "Internal server error", err.Error())
}

// GetUserRole extracts the caller's role header, normalized to lowercase
func GetUserRole(c *gin.Context) string {
	return models.NormalizeTeam(c.GetHeader("X-User-Role"))
}
