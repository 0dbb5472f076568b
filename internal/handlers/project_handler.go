package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/project-service/internal/services"
	"github.com/taskforge/project-service/internal/utils"
)

type ProjectHandler struct {
	BaseHandler
	projectService services.ProjectService
}

func NewProjectHandler(projectService services.ProjectService, logger utils.Logger) *ProjectHandler {
	return &ProjectHandler{
		BaseHandler:    NewBaseHandler(logger),
		projectService: projectService,
	}
}

// AddProject creates a project owned by the caller
// @Summary Create project
// @Description Creates a project and partitions the requested assignees into members and invitations
// @Tags projects
// @Accept json
// @Produce json
// @Param request body services.CreateProjectRequest true "Project data"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /project/addProject [post]
func (h *ProjectHandler) AddProject(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	userID, ok := GetUserIDFromContext(c)
	if !ok {
		h.respondError(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	h.LogRequest(c, "Creating project", "project_name", req.Name)

	result, err := h.projectService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusCreated, "Project created successfully", gin.H{
		"project":            result.Project,
		"membersAdded":       result.MembersAdded,
		"invitationsCreated": result.InvitationsCreated,
	})
}

// ViewAllProject lists every project the caller belongs to or created
// @Summary List projects
// @Tags projects
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse
// @Router /project/viewAllProject [get]
func (h *ProjectHandler) ViewAllProject(c *gin.Context) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		h.respondError(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	projects, err := h.projectService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Projects retrieved successfully", gin.H{
		"projects": projects,
	})
}

// ViewProject returns one project with its member list and the caller's role
// @Summary Get project
// @Tags projects
// @Produce json
// @Param projectId path uint true "Project ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /project/{projectId} [get]
func (h *ProjectHandler) ViewProject(c *gin.Context) {
	projectID := h.parseUintParam(c, "projectId")
	if projectID == 0 {
		return
	}

	userID, ok := GetUserIDFromContext(c)
	if !ok {
		h.respondError(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	detail, err := h.projectService.GetByID(c.Request.Context(), projectID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Project retrieved successfully", gin.H{
		"project":  detail.Project,
		"members":  detail.Members,
		"userRole": detail.UserRole,
	})
}

// AddMember pulls new people into an existing project
// @Summary Add members
// @Description Matches assignee emails to accounts; unmatched emails become invitations
// @Tags projects
// @Accept json
// @Produce json
// @Param projectId path uint true "Project ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /edit/{projectId}/addMember [post]
func (h *ProjectHandler) AddMember(c *gin.Context) {
	projectID := h.parseUintParam(c, "projectId")
	if projectID == 0 {
		return
	}

	var req struct {
		Assignees []services.AssigneeRequest `json:"assignees"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	userID, ok := GetUserIDFromContext(c)
	if !ok {
		h.respondError(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	h.LogRequest(c, "Adding project members", "project_id", projectID, "count", len(req.Assignees))

	result, err := h.projectService.AddMembers(c.Request.Context(), projectID, req.Assignees, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Members processed successfully", gin.H{
		"membersAdded":       result.MembersAdded,
		"invitationsCreated": result.InvitationsCreated,
	})
}

// EditProject patches the project's own fields
// @Summary Update project
// @Tags projects
// @Accept json
// @Produce json
// @Param projectId path uint true "Project ID"
// @Param request body services.UpdateProjectRequest true "Fields to change"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /edit/{projectId}/editproject [put]
func (h *ProjectHandler) EditProject(c *gin.Context) {
	projectID := h.parseUintParam(c, "projectId")
	if projectID == 0 {
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	h.LogRequest(c, "Updating project", "project_id", projectID)

	project, err := h.projectService.Update(c.Request.Context(), projectID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Project updated successfully", gin.H{
		"project": project,
	})
}

// DeleteProject removes the project with its tasks and memberships
// @Summary Delete project
// @Tags projects
// @Produce json
// @Param projectId path uint true "Project ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /edit/{projectId}/deleteproject [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID := h.parseUintParam(c, "projectId")
	if projectID == 0 {
		return
	}

	h.LogRequest(c, "Deleting project", "project_id", projectID)

	project, err := h.projectService.Delete(c.Request.Context(), projectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Project deleted successfully", gin.H{
		"project": project,
	})
}
