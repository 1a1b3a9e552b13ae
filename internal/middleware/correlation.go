package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/lendops/query-management-api/pkg/utils"
)

const correlationHeader = "X-Correlation-ID"

// CorrelationID ensures every request carries a correlation identifier,
// echoing the caller's value when present
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(correlationHeader)
		if correlationID == "" {
			correlationID = utils.GenerateID()
		}

		c.Set("correlationID", correlationID)
		c.Writer.Header().Set(correlationHeader, correlationID)
		c.Next()
	}
}
