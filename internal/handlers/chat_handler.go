package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lendops/query-management-api/internal/models"
	"github.com/lendops/query-management-api/internal/service"
	"github.com/lendops/query-management-api/internal/utils"
)

// ChatHandler handles chat thread HTTP requests
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler instance
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// GetThread handles GET /queries/:queryId/chat
func (h *ChatHandler) GetThread(c *gin.Context) {
	queryID := c.Param("queryId")

	messages, err := h.chatService.GetThread(c.Request.Context(), queryID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, messages)
}

// PostMessage handles POST /queries/:queryId/chat
func (h *ChatHandler) PostMessage(c *gin.Context) {
	queryID := c.Param("queryId")

	var request models.ChatPostRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	response, err := h.chatService.PostMessage(c.Request.Context(), queryID, &request)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	if response.IsDuplicate {
		utils.SendOKResponse(c, response)
		return
	}
	utils.SendCreatedResponse(c, response)
}

// GetRemarks handles GET /queries/:queryId/remarks
func (h *ChatHandler) GetRemarks(c *gin.Context) {
	groupID := c.Param("queryId")

	remarks, err := h.chatService.GetRemarks(c.Request.Context(), groupID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, remarks)
}

// DebugChatHistory handles GET /debug-chat-history?queryId=
func (h *ChatHandler) DebugChatHistory(c *gin.Context) {
	queryID := c.Query("queryId")

	debug, err := h.chatService.GetDebugThread(c.Request.Context(), queryID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, debug)
}
