package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lendops/query-management-api/internal/database"
	"github.com/lendops/query-management-api/internal/handlers"
	"github.com/lendops/query-management-api/internal/middleware"
	"github.com/lendops/query-management-api/internal/notify"
	"github.com/lendops/query-management-api/internal/service"
)

// SetupRouter configures all API routes
func SetupRouter(
	queryService *service.QueryService,
	chatService *service.ChatService,
	hub *notify.Hub,
	db *database.DB,
) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.CorrelationID())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		if db != nil {
			if err := db.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Create handlers
	queryHandler := handlers.NewQueryHandler(queryService)
	chatHandler := handlers.NewChatHandler(chatService)
	eventsHandler := handlers.NewEventsHandler(hub)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		queries := v1.Group("/queries")
		{
			queries.GET("", queryHandler.ListQueries)
			queries.POST("", queryHandler.CreateQueries)
			queries.PATCH("", queryHandler.UpdateQuery)
			queries.GET("/:queryId", queryHandler.GetQuery)
			queries.GET("/:queryId/audit", queryHandler.GetAuditTrail)
			queries.GET("/:queryId/chat", chatHandler.GetThread)
			queries.POST("/:queryId/chat", chatHandler.PostMessage)
			queries.GET("/:queryId/chat/stream", eventsHandler.StreamChat)
			queries.GET("/:queryId/remarks", chatHandler.GetRemarks)
		}

		v1.GET("/events", eventsHandler.Stream)
		v1.GET("/updates", eventsHandler.Updates)
		v1.GET("/debug-chat-history", chatHandler.DebugChatHistory)
	}

	return router
}
