package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/project-service/internal/services"
	"github.com/taskforge/project-service/internal/utils"
)

type AnalyticsHandler struct {
	BaseHandler
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService, logger utils.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger),
		analyticsService: analyticsService,
	}
}

// Progress returns the project's completion percentage and status counts
// @Summary Project progress
// @Tags analytics
// @Produce json
// @Param projectId path uint true "Project ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /project/{projectId}/progress [get]
func (h *AnalyticsHandler) Progress(c *gin.Context) {
	projectID := h.parseUintParam(c, "projectId")
	if projectID == 0 {
		return
	}

	progress, err := h.analyticsService.Progress(c.Request.Context(), projectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Progress retrieved successfully", gin.H{
		"progress":      progress.Progress,
		"totalTask":     progress.TotalTask,
		"completedTask": progress.CompletedTask,
		"ongoingTask":   progress.OngoingTask,
		"pendingTask":   progress.PendingTask,
	})
}

// Workload returns per-member shares of the project's assigned tasks
// @Summary Project workload
// @Tags analytics
// @Produce json
// @Param projectId path uint true "Project ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /project/{projectId}/workload [get]
func (h *AnalyticsHandler) Workload(c *gin.Context) {
	projectID := h.parseUintParam(c, "projectId")
	if projectID == 0 {
		return
	}

	workload, err := h.analyticsService.Workload(c.Request.Context(), projectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Workload retrieved successfully", gin.H{
		"workload": workload,
	})
}

// ExportWorkload streams the workload table as an xlsx download
// @Summary Export project workload
// @Tags analytics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param projectId path uint true "Project ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /project/{projectId}/workload/export [get]
func (h *AnalyticsHandler) ExportWorkload(c *gin.Context) {
	projectID := h.parseUintParam(c, "projectId")
	if projectID == 0 {
		return
	}

	h.LogRequest(c, "Exporting workload", "project_id", projectID)

	data, err := h.analyticsService.ExportWorkload(c.Request.Context(), projectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("workload-project-%d-%s.xlsx", projectID, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
