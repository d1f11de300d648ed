package handler

import (
	"net/http"
	"strconv"

	"travelapproval/internal/middleware"
	"travelapproval/internal/model"
	"travelapproval/internal/service"
	"travelapproval/pkg/pagination"
	"travelapproval/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
	auth         *middleware.Auth
}

func NewAuditHandler(auditService service.AuditService, auth *middleware.Auth) *AuditHandler {
	return &AuditHandler{auditService: auditService, auth: auth}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/audit-logs")
	group.Use(h.auth.RequireRole(model.RoleAdmin, model.RoleManager)) // Protect history logs
	{
		group.GET("", h.GetAuditLogs)
		group.GET("/entity/:type/:id", h.GetEntityLogs)
		group.GET("/user/:id", h.auth.RequireRole(model.RoleAdmin), h.GetUserLogs)
	}
}

// GetAuditLogs retrieves paginated records with the acting user preloaded
// @Summary      Get audit logs
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.auditService.ListLogs(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(logs, total, params)))
}

// GetEntityLogs returns the history of one entity, newest first
// @Summary      Get audit logs for an entity
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        type   path      string  true   "Entity type (travel_request, project)"
// @Param        id     path      string  true   "Entity ID"
// @Param        limit  query     int     false  "Max items (0 = all)"
// @Success      200    {object}  response.Response{data=[]service.AuditLogResponse}
// @Router       /api/audit-logs/entity/{type}/{id} [get]
func (h *AuditHandler) GetEntityLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	logs, err := h.auditService.GetLogsForEntity(c.Request.Context(), c.Param("type"), c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, logs))
}

// GetUserLogs returns the actions taken by one user
// @Summary      Get audit logs for a user
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      string  true   "User ID"
// @Param        limit  query     int     false  "Max items (0 = all)"
// @Success      200    {object}  response.Response{data=[]service.AuditLogResponse}
// @Router       /api/audit-logs/user/{id} [get]
func (h *AuditHandler) GetUserLogs(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	logs, err := h.auditService.GetLogsByUser(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, logs))
}
