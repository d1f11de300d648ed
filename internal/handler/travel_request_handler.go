package handler

import (
	"net/http"

	"travelapproval/internal/middleware"
	"travelapproval/internal/service"
	"travelapproval/pkg/pagination"
	"travelapproval/pkg/response"

	"github.com/gin-gonic/gin"
)

type TravelRequestHandler struct {
	requestService service.TravelRequestService
	auth           *middleware.Auth
}

func NewTravelRequestHandler(requestService service.TravelRequestService, auth *middleware.Auth) *TravelRequestHandler {
	return &TravelRequestHandler{requestService: requestService, auth: auth}
}

func (h *TravelRequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/travel-requests")
	requests.Use(h.auth.Authenticate())
	{
		requests.POST("", h.Submit)
		requests.GET("", h.ListMine)
		requests.GET("/:id", h.Get)
		// Any role may call these; the service checks the caller is the assigned approver
		requests.POST("/:id/approve", h.Approve)
		requests.POST("/:id/reject", h.Reject)
	}
}

// Submit creates a pending travel request routed to its approver
// @Summary      Submit a travel request
// @Description  Validates the request, resolves the approver (manager for operations, team lead for project) and notifies them
// @Tags         travel-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SubmitTravelRequestInput  true  "Travel request"
// @Success      201      {object}  response.Response{data=service.TravelRequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/travel-requests [post]
func (h *TravelRequestHandler) Submit(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var input service.SubmitTravelRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.requestService.Submit(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListMine returns the caller's own requests, newest first
// @Summary      List my travel requests
// @Tags         travel-requests
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status"  Enums(pending, approved, rejected)
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20, max 100)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      422     {object}  response.Response
// @Router       /api/travel-requests [get]
func (h *TravelRequestHandler) ListMine(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	requests, total, err := h.requestService.ListForRequester(c.Request.Context(), userID, c.Query("status"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(requests, total, params)))
}

// Get returns a single request visible to the caller
// @Summary      Get a travel request
// @Tags         travel-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Travel request ID"
// @Success      200  {object}  response.Response{data=service.TravelRequestResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/travel-requests/{id} [get]
func (h *TravelRequestHandler) Get(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	result, err := h.requestService.GetRequest(c.Request.Context(), requestID, userID, role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Approve moves a pending request to approved
// @Summary      Approve a travel request
// @Description  Only the assigned approver may approve; comments are optional
// @Tags         travel-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                             true   "Travel request ID"
// @Param        payload  body      service.ApproveTravelRequestInput  false  "Comments"
// @Success      200      {object}  response.Response{data=service.TravelRequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/travel-requests/{id}/approve [post]
func (h *TravelRequestHandler) Approve(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var input service.ApproveTravelRequestInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
	}

	result, err := h.requestService.Approve(c.Request.Context(), requestID, userID, input.Comments)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Reject moves a pending request to rejected
// @Summary      Reject a travel request
// @Description  Only the assigned approver may reject; a non-blank reason is required
// @Tags         travel-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                            true  "Travel request ID"
// @Param        payload  body      service.RejectTravelRequestInput  true  "Rejection reason"
// @Success      200      {object}  response.Response{data=service.TravelRequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/travel-requests/{id}/reject [post]
func (h *TravelRequestHandler) Reject(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	// An empty body falls through so the service reports the missing reason
	var input service.RejectTravelRequestInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
	}

	result, err := h.requestService.Reject(c.Request.Context(), requestID, userID, input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
