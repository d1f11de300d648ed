package handler

import (
	"bytes"
	"net/http"
	"time"

	"travelapproval/internal/middleware"
	"travelapproval/internal/model"
	"travelapproval/internal/repository"
	"travelapproval/internal/service"
	"travelapproval/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
	auth          *middleware.Auth
}

func NewReportHandler(reportService service.ReportService, auth *middleware.Auth) *ReportHandler {
	return &ReportHandler{reportService: reportService, auth: auth}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports")
	reports.Use(h.auth.RequireRole(model.RoleAdmin, model.RoleAccounting))
	{
		reports.GET("", h.List)
		reports.GET("/export", h.Export)
		reports.GET("/summary", h.Summary)
	}
}

func (h *ReportHandler) filter(c *gin.Context) (repository.ReportFilter, bool) {
	filter, err := service.ParseReportFilter(
		c.Query("status"),
		c.Query("date_from"),
		c.Query("date_to"),
		c.Query("taccount_id"),
		c.Query("project_id"),
	)
	if err != nil {
		respondError(c, err)
		return filter, false
	}
	return filter, true
}

// List returns decided requests for accounting, newest approval first
// @Summary      List requests for reporting
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        status       query     string  false  "approved (default) or rejected"
// @Param        date_from    query     string  false  "YYYY-MM-DD"
// @Param        date_to      query     string  false  "YYYY-MM-DD, inclusive"
// @Param        taccount_id  query     string  false  "T-account ID"
// @Param        project_id   query     string  false  "Project ID"
// @Success      200          {object}  response.Response{data=[]service.TravelRequestResponse}
// @Failure      422          {object}  response.Response
// @Router       /api/reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	filter, ok := h.filter(c)
	if !ok {
		return
	}

	requests, err := h.reportService.ListRequests(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// Export streams the filtered requests as CSV
// @Summary      Export requests as CSV
// @Tags         reports
// @Produce      text/csv
// @Security     BearerAuth
// @Param        status       query  string  false  "approved (default) or rejected"
// @Param        date_from    query  string  false  "YYYY-MM-DD"
// @Param        date_to      query  string  false  "YYYY-MM-DD, inclusive"
// @Param        taccount_id  query  string  false  "T-account ID"
// @Param        project_id   query  string  false  "Project ID"
// @Success      200          {file}  file
// @Router       /api/reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	filter, ok := h.filter(c)
	if !ok {
		return
	}

	// Buffer so a failed query still gets a JSON error instead of a truncated file
	var buf bytes.Buffer
	if err := h.reportService.ExportCSV(c.Request.Context(), filter, &buf); err != nil {
		respondError(c, err)
		return
	}

	filename := "travel_requests_" + time.Now().Format("20060102_150405") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Summary totals estimated cost per T-account
// @Summary      Cost summary per T-account
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     string  false  "approved (default) or rejected"
// @Param        date_from  query     string  false  "YYYY-MM-DD"
// @Param        date_to    query     string  false  "YYYY-MM-DD, inclusive"
// @Success      200        {object}  response.Response{data=[]repository.TAccountSummary}
// @Router       /api/reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	filter, ok := h.filter(c)
	if !ok {
		return
	}

	summary, err := h.reportService.SummaryByTAccount(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
