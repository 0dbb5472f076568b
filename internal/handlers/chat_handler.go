package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/project-service/internal/services"
	"github.com/taskforge/project-service/internal/utils"
)

type ChatHandler struct {
	BaseHandler
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService, logger utils.Logger) *ChatHandler {
	return &ChatHandler{
		BaseHandler: NewBaseHandler(logger),
		chatService: chatService,
	}
}

// SendMessage posts a message to the project's chat
// @Summary Send chat message
// @Tags chat
// @Accept json
// @Produce json
// @Param projectId path uint true "Project ID"
// @Success 201 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Router /chat/{projectId} [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	projectID := h.parseUintParam(c, "projectId")
	if projectID == 0 {
		return
	}

	var req struct {
		Message string `json:"message" binding:"required"`
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

	message, err := h.chatService.SaveMessage(c.Request.Context(), projectID, userID, req.Message)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusCreated, "Message sent successfully", gin.H{
		"chat": message,
	})
}

// History returns the project's chat messages in chronological order
// @Summary Chat history
// @Tags chat
// @Produce json
// @Param projectId path uint true "Project ID"
// @Param limit query int false "Max messages to return"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /chat/{projectId} [get]
func (h *ChatHandler) History(c *gin.Context) {
	projectID := h.parseUintParam(c, "projectId")
	if projectID == 0 {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		limit = 0
	}

	messages, err := h.chatService.History(c.Request.Context(), projectID, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Chat history retrieved successfully", gin.H{
		"messages": messages,
	})
}
