package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/project-service/internal/repositories"
	"github.com/taskforge/project-service/internal/services"
	"github.com/taskforge/project-service/internal/utils"
)

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// SuccessResponse documents the success envelope for swagger
type SuccessResponse struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// BaseHandler carries the pieces every handler shares
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	logger := utils.GetLoggerFromContext(c.Request.Context(), h.logger)
	if userID, ok := GetUserIDFromContext(c); ok {
		args = append(args, "user_id", userID)
	}
	logger.Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	logger := utils.GetLoggerFromContext(c.Request.Context(), h.logger)
	args = append(args, "error", err, "path", c.Request.URL.Path)
	logger.Error(msg, args...)
}

// respond writes the success envelope. Extra payload keys are merged at the
// top level next to success/status/message.
func (h *BaseHandler) respond(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{
		"success": true,
		"status":  status,
		"message": message,
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

func (h *BaseHandler) respondError(c *gin.Context, status int, message string, details any) {
	c.JSON(status, ErrorResponse{
		Success: false,
		Status:  status,
		Message: message,
		Details: details,
	})
}

// parseUintParam parses a numeric path parameter. Writes the 400 itself and
// returns 0 when the parameter is missing or malformed.
func (h *BaseHandler) parseUintParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		h.respondError(c, http.StatusBadRequest, "Invalid "+name+" parameter", raw)
		return 0
	}
	return uint(id)
}

// handleServiceError maps service errors to the HTTP taxonomy. Every handler
// funnels its service failures through here so the mapping stays in one
// place.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs services.ValidationErrors
	if errors.As(err, &validationErrs) {
		h.respondError(c, http.StatusBadRequest, "Validation failed", validationErrs)
		return
	}

	var permErr *services.PermissionError
	if errors.As(err, &permErr) {
		h.respondError(c, http.StatusForbidden, permErr.Reason, nil)
		return
	}

	switch {
	case errors.Is(err, services.ErrValidationFailed), errors.Is(err, services.ErrInvalidStatus):
		h.respondError(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		h.respondError(c, http.StatusUnauthorized, "Invalid email or password", nil)
	case errors.Is(err, services.ErrForbidden):
		h.respondError(c, http.StatusForbidden, "You do not have permission to perform this action", nil)
	case errors.Is(err, services.ErrProjectNotFound):
		h.respondError(c, http.StatusNotFound, "Project not found", nil)
	case errors.Is(err, services.ErrTaskNotFound):
		h.respondError(c, http.StatusNotFound, "Task not found", nil)
	case errors.Is(err, services.ErrUserNotFound):
		h.respondError(c, http.StatusNotFound, "User not found", nil)
	case errors.Is(err, services.ErrMemberNotFound):
		h.respondError(c, http.StatusNotFound, "Member not found", nil)
	case errors.Is(err, services.ErrAttachmentNotFound):
		h.respondError(c, http.StatusNotFound, "File not found", nil)
	case errors.Is(err, services.ErrNoAssignments):
		h.respondError(c, http.StatusNotFound, "No task assignments found for this project", nil)
	case errors.Is(err, services.ErrDuplicateAssignment):
		h.respondError(c, http.StatusConflict, "User is already assigned to this task", nil)
	case errors.Is(err, services.ErrEmailTaken):
		h.respondError(c, http.StatusConflict, "Email is already registered", nil)
	case errors.Is(err, services.ErrUsernameTaken):
		h.respondError(c, http.StatusConflict, "Username is already taken", nil)
	case errors.Is(err, services.ErrStorageUnavailable):
		h.respondError(c, http.StatusServiceUnavailable, "File storage is not configured", nil)
	case repositories.IsNotFoundError(err):
		h.respondError(c, http.StatusNotFound, "Resource not found", nil)
	default:
		h.LogError(c, err, "Unexpected service error")
		h.respondError(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}
