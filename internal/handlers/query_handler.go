package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lendops/query-management-api/internal/models"
	"github.com/lendops/query-management-api/internal/service"
	"github.com/lendops/query-management-api/internal/utils"
)

// QueryHandler handles query lifecycle HTTP requests
type QueryHandler struct {
	queryService *service.QueryService
}

// NewQueryHandler creates a new query handler instance
func NewQueryHandler(queryService *service.QueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

// CreateQueries handles POST /queries
func (h *QueryHandler) CreateQueries(c *gin.Context) {
	if utils.GetUserRole(c) != models.RoleOperations {
		utils.SendForbiddenError(c, "Only the operations team can create queries")
		return
	}

	var request models.QueryCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	groups, err := h.queryService.CreateQueries(c.Request.Context(), &request)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendCreatedResponse(c, groups)
}

// UpdateQuery handles PATCH /queries
func (h *QueryHandler) UpdateQuery(c *gin.Context) {
	var request models.QueryUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	group, err := h.queryService.UpdateQuery(c.Request.Context(), &request)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, group)
}

// ListQueries handles GET /queries
func (h *QueryHandler) ListQueries(c *gin.Context) {
	filters, err := parseListFilters(c)
	if err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	if c.Query("stats") == "true" {
		stats, err := h.queryService.GetQueryStats(c.Request.Context(), filters)
		if err != nil {
			utils.SendServiceError(c, err)
			return
		}
		utils.SendOKResponse(c, stats)
		return
	}

	groups, err := h.queryService.ListQueries(c.Request.Context(), filters)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, groups)
}

// GetQuery handles GET /queries/:queryId
func (h *QueryHandler) GetQuery(c *gin.Context) {
	groupID := c.Param("queryId")

	group, err := h.queryService.GetQueryByID(c.Request.Context(), groupID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, group)
}

// GetAuditTrail handles GET /queries/:queryId/audit
func (h *QueryHandler) GetAuditTrail(c *gin.Context) {
	queryID := c.Param("queryId")

	records, err := h.queryService.GetAuditTrail(c.Request.Context(), queryID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, records)
}

func parseListFilters(c *gin.Context) (models.QueryListFilters, error) {
	filters := models.QueryListFilters{
		Team:   c.Query("team"),
		Status: strings.TrimSpace(c.Query("status")),
		AppNo:  strings.TrimSpace(c.Query("appNo")),
	}

	if raw := c.Query("resolved"); raw != "" {
		resolved, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, err
		}
		filters.Resolved = &resolved
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return filters, err
		}
		filters.Limit = limit
	}

	if raw := c.Query("branches"); raw != "" {
		for _, branch := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(branch); trimmed != "" {
				filters.Branches = append(filters.Branches, trimmed)
			}
		}
	}

	return filters, nil
}
