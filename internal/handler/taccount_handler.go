package handler

import (
	"net/http"

	"travelapproval/internal/middleware"
	"travelapproval/internal/model"
	"travelapproval/internal/service"
	"travelapproval/pkg/response"

	"github.com/gin-gonic/gin"
)

type TAccountHandler struct {
	taccountService service.TAccountService
	auth            *middleware.Auth
}

func NewTAccountHandler(taccountService service.TAccountService, auth *middleware.Auth) *TAccountHandler {
	return &TAccountHandler{taccountService: taccountService, auth: auth}
}

func (h *TAccountHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/taccounts", h.auth.Authenticate(), h.ListActive)

	admin := router.Group("/api/admin/taccounts")
	admin.Use(h.auth.RequireRole(model.RoleAdmin))
	{
		admin.GET("", h.List)
		admin.POST("", h.Create)
		admin.GET("/:id", h.Get)
		admin.PUT("/:id", h.Update)
		admin.POST("/:id/activate", h.Activate)
		admin.POST("/:id/deactivate", h.Deactivate)
	}
}

// ListActive returns the budget accounts requests can be charged to
// @Summary      List active T-accounts
// @Tags         taccounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.TAccount}
// @Router       /api/taccounts [get]
func (h *TAccountHandler) ListActive(c *gin.Context) {
	accounts, err := h.taccountService.ListTAccounts(c.Request.Context(), true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, accounts))
}

// @Summary      List all T-accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        active_only  query     bool  false  "Only active accounts"
// @Success      200          {object}  response.Response{data=[]model.TAccount}
// @Router       /api/admin/taccounts [get]
func (h *TAccountHandler) List(c *gin.Context) {
	accounts, err := h.taccountService.ListTAccounts(c.Request.Context(), c.Query("active_only") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, accounts))
}

// @Summary      Create T-account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTAccountInput  true  "Account"
// @Success      201      {object}  response.Response{data=model.TAccount}
// @Failure      409      {object}  response.Response
// @Router       /api/admin/taccounts [post]
func (h *TAccountHandler) Create(c *gin.Context) {
	var input service.CreateTAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.taccountService.CreateTAccount(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, account))
}

// @Summary      Get T-account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  response.Response{data=model.TAccount}
// @Router       /api/admin/taccounts/{id} [get]
func (h *TAccountHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	account, err := h.taccountService.GetTAccount(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, account))
}

// @Summary      Update T-account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Account ID"
// @Param        payload  body      service.UpdateTAccountInput  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.TAccount}
// @Router       /api/admin/taccounts/{id} [put]
func (h *TAccountHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var input service.UpdateTAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.taccountService.UpdateTAccount(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, account))
}

// @Summary      Activate T-account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  response.Response{data=model.TAccount}
// @Router       /api/admin/taccounts/{id}/activate [post]
func (h *TAccountHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// @Summary      Deactivate T-account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  response.Response{data=model.TAccount}
// @Router       /api/admin/taccounts/{id}/deactivate [post]
func (h *TAccountHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *TAccountHandler) setActive(c *gin.Context, active bool) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	account, err := h.taccountService.SetActive(c.Request.Context(), id, active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, account))
}
