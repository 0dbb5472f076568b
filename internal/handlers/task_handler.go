package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/project-service/internal/services"
	"github.com/taskforge/project-service/internal/utils"
)

type TaskHandler struct {
	BaseHandler
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService, logger utils.Logger) *TaskHandler {
	return &TaskHandler{
		BaseHandler: NewBaseHandler(logger),
		taskService: taskService,
	}
}

// CreateTask creates a batch of tasks in one transaction
// @Summary Create tasks
// @Description Persists the whole batch or nothing. Assignees resolving to visitors or non-members are skipped silently.
// @Tags tasks
// @Accept json
// @Produce json
// @Param projectId path uint true "Project ID"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /project/{projectId}/createTask [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	projectID := h.parseUintParam(c, "projectId")
	if projectID == 0 {
		return
	}

	var req struct {
		Tasks []services.CreateTaskRequest `json:"tasks"`
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

	// The route names the project and is what the permission check ran
	// against. Fill it in for entries that left it off and reject entries
	// that point somewhere else.
	for i := range req.Tasks {
		if req.Tasks[i].ProjectID == 0 {
			req.Tasks[i].ProjectID = projectID
			continue
		}
		if req.Tasks[i].ProjectID != projectID {
			h.respondError(c, http.StatusBadRequest,
				"Task project_id does not match the requested project", nil)
			return
		}
	}

	h.LogRequest(c, "Creating tasks", "project_id", projectID, "count", len(req.Tasks))

	tasks, err := h.taskService.CreateTasks(c.Request.Context(), req.Tasks, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusCreated, "Tasks created successfully", gin.H{
		"tasks": tasks,
	})
}

// ListTasks lists all tasks of a project
// @Summary List project tasks
// @Tags tasks
// @Produce json
// @Param projectId path uint true "Project ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /project/{projectId}/tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	projectID := h.parseUintParam(c, "projectId")
	if projectID == 0 {
		return
	}

	tasks, err := h.taskService.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Tasks retrieved successfully", gin.H{
		"tasks": tasks,
	})
}

// AddAssignee assigns one project member to a task
// @Summary Add task assignee
// @Tags tasks
// @Accept json
// @Produce json
// @Param projectId path uint true "Project ID"
// @Param taskId path uint true "Task ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /edit/{projectId}/addMember/{taskId} [post]
func (h *TaskHandler) AddAssignee(c *gin.Context) {
	projectID := h.parseUintParam(c, "projectId")
	if projectID == 0 {
		return
	}
	taskID := h.parseUintParam(c, "taskId")
	if taskID == 0 {
		return
	}

	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	actingUserID, ok := GetUserIDFromContext(c)
	if !ok {
		h.respondError(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	h.LogRequest(c, "Adding task assignee", "task_id", taskID, "assignee_id", req.UserID)

	assignment, err := h.taskService.AddAssignee(c.Request.Context(), projectID, taskID, req.UserID, actingUserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Assignee added successfully", gin.H{
		"assignment": assignment,
	})
}

// EditProgress changes a task's status
// @Summary Edit task progress
// @Tags tasks
// @Accept json
// @Produce json
// @Param projectId path uint true "Project ID"
// @Param taskId path uint true "Task ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /edit/{projectId}/progress/{taskId} [put]
func (h *TaskHandler) EditProgress(c *gin.Context) {
	taskID := h.parseUintParam(c, "taskId")
	if taskID == 0 {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	h.LogRequest(c, "Editing task progress", "task_id", taskID, "status", req.Status)

	task, err := h.taskService.EditProgress(c.Request.Context(), taskID, req.Status)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Task progress updated successfully", gin.H{
		"task": task,
	})
}

// EditDueDate changes a task's due date
// @Summary Edit task due date
// @Tags tasks
// @Accept json
// @Produce json
// @Param projectId path uint true "Project ID"
// @Param taskId path uint true "Task ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /edit/{projectId}/duedate/{taskId} [put]
func (h *TaskHandler) EditDueDate(c *gin.Context) {
	taskID := h.parseUintParam(c, "taskId")
	if taskID == 0 {
		return
	}

	var req struct {
		DueDate time.Time `json:"due_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	h.LogRequest(c, "Editing task due date", "task_id", taskID)

	task, err := h.taskService.UpdateDueDate(c.Request.Context(), taskID, req.DueDate)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Task due date updated successfully", gin.H{
		"task": task,
	})
}

// EditTaskDescription changes a task's description
// @Summary Edit task description
// @Tags tasks
// @Accept json
// @Produce json
// @Param projectId path uint true "Project ID"
// @Param taskId path uint true "Task ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /edit/{projectId}/edittaskdes/{taskId} [put]
func (h *TaskHandler) EditTaskDescription(c *gin.Context) {
	taskID := h.parseUintParam(c, "taskId")
	if taskID == 0 {
		return
	}

	var req struct {
		Description string `json:"task_description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	task, err := h.taskService.UpdateDescription(c.Request.Context(), taskID, req.Description)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Task description updated successfully", gin.H{
		"task": task,
	})
}

// DeleteTask removes a task and its assignments
// @Summary Delete task
// @Tags tasks
// @Produce json
// @Param projectId path uint true "Project ID"
// @Param taskId path uint true "Task ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /edit/{projectId}/deletetask/{taskId} [put]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID := h.parseUintParam(c, "taskId")
	if taskID == 0 {
		return
	}

	h.LogRequest(c, "Deleting task", "task_id", taskID)

	task, err := h.taskService.Delete(c.Request.Context(), taskID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Task deleted successfully", gin.H{
		"task": task,
	})
}
