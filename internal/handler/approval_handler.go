package handler

import (
	"net/http"

	"travelapproval/internal/middleware"
	"travelapproval/internal/model"
	"travelapproval/internal/service"
	"travelapproval/pkg/response"

	"github.com/gin-gonic/gin"
)

type ApprovalHandler struct {
	requestService service.TravelRequestService
	auth           *middleware.Auth
}

func NewApprovalHandler(requestService service.TravelRequestService, auth *middleware.Auth) *ApprovalHandler {
	return &ApprovalHandler{requestService: requestService, auth: auth}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	approvals := router.Group("/api/approvals")
	approvals.Use(h.auth.RequireRole(model.RoleManager, model.RoleTeamLead, model.RoleAdmin))
	{
		approvals.GET("", h.ListPending)
	}
}

// ListPending returns the requests waiting on the caller's decision
// @Summary      List pending approvals
// @Description  Pending travel requests assigned to the current user, newest first
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.TravelRequestResponse}
// @Failure      403  {object}  response.Response
// @Router       /api/approvals [get]
func (h *ApprovalHandler) ListPending(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	requests, err := h.requestService.ListPendingForApprover(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}
