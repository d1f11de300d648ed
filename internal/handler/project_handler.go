package handler

import (
	"net/http"

	"travelapproval/internal/middleware"
	"travelapproval/internal/model"
	"travelapproval/internal/service"
	"travelapproval/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AssignTeamLeadRequest struct {
	TeamLeadID uuid.UUID `json:"team_lead_id" binding:"required"`
}

type ProjectHandler struct {
	projectService service.ProjectService
	auth           *middleware.Auth
}

func NewProjectHandler(projectService service.ProjectService, auth *middleware.Auth) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, auth: auth}
}

func (h *ProjectHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Submission forms need the active project list
	router.GET("/api/projects", h.auth.Authenticate(), h.ListActive)

	admin := router.Group("/api/admin/projects")
	admin.Use(h.auth.RequireRole(model.RoleAdmin))
	{
		admin.GET("", h.List)
		admin.POST("", h.Create)
		admin.GET("/:id", h.Get)
		admin.PUT("/:id", h.Update)
		admin.PUT("/:id/team-lead", h.AssignTeamLead)
		admin.DELETE("/:id", h.Deactivate)
	}
}

// ListActive returns active projects
// @Summary      List active projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.ProjectResponse}
// @Router       /api/projects [get]
func (h *ProjectHandler) ListActive(c *gin.Context) {
	projects, err := h.projectService.ListProjects(c.Request.Context(), true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, projects))
}

// List returns every project including inactive ones
// @Summary      List all projects
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        active_only  query     bool  false  "Only active projects"
// @Success      200          {object}  response.Response{data=[]service.ProjectResponse}
// @Router       /api/admin/projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.ListProjects(c.Request.Context(), c.Query("active_only") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, projects))
}

// Create adds a project led by an existing team lead or manager
// @Summary      Create project
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateProjectInput  true  "Project"
// @Success      201      {object}  response.Response{data=service.ProjectResponse}
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/admin/projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	actorID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var input service.CreateProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), actorID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, project))
}

// Get returns one project
// @Summary      Get project
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  response.Response{data=service.ProjectResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/admin/projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, project))
}

// Update changes name, description or team lead
// @Summary      Update project
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Project ID"
// @Param        payload  body      service.UpdateProjectInput  true  "Fields to change"
// @Success      200      {object}  response.Response{data=service.ProjectResponse}
// @Router       /api/admin/projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	actorID, _, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var input service.UpdateProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), actorID, projectID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, project))
}

// AssignTeamLead replaces the project's team lead
// @Summary      Assign team lead
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "Project ID"
// @Param        payload  body      AssignTeamLeadRequest  true  "Team lead"
// @Success      200      {object}  response.Response{data=service.ProjectResponse}
// @Router       /api/admin/projects/{id}/team-lead [put]
func (h *ProjectHandler) AssignTeamLead(c *gin.Context) {
	actorID, _, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req AssignTeamLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	project, err := h.projectService.AssignTeamLead(c.Request.Context(), actorID, projectID, req.TeamLeadID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, project))
}

// Deactivate hides a project from new submissions
// @Summary      Deactivate project
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  response.Response{data=service.ProjectResponse}
// @Router       /api/admin/projects/{id} [delete]
func (h *ProjectHandler) Deactivate(c *gin.Context) {
	actorID, _, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.DeactivateProject(c.Request.Context(), actorID, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, project))
}
