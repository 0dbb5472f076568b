package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/project-service/internal/services"
	"github.com/taskforge/project-service/internal/utils"
)

type UploadHandler struct {
	BaseHandler
	uploadService services.UploadService
}

func NewUploadHandler(uploadService services.UploadService, logger utils.Logger) *UploadHandler {
	return &UploadHandler{
		BaseHandler:   NewBaseHandler(logger),
		uploadService: uploadService,
	}
}

// PresignUpload issues a presigned PUT URL for a new file
// @Summary Presign upload
// @Description Returns a short-lived URL the client uploads directly to
// @Tags files
// @Accept json
// @Produce json
// @Param request body services.PresignUploadRequest true "File metadata"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /files/presign-upload [post]
func (h *UploadHandler) PresignUpload(c *gin.Context) {
	var req services.PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	userID, ok := GetUserIDFromContext(c)
	if !ok {
		h.respondError(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	h.LogRequest(c, "Presigning upload", "file_name", req.FileName, "kind", req.Kind)

	result, err := h.uploadService.PresignUpload(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Upload URL issued successfully", gin.H{
		"file_id":    result.FileID,
		"key":        result.Key,
		"url":        result.URL,
		"expires_in": result.ExpiresIn,
	})
}

// PresignDownload issues a presigned GET URL for a stored file
// @Summary Presign download
// @Tags files
// @Produce json
// @Param fileId path uint true "File ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /files/{fileId}/presign-download [get]
func (h *UploadHandler) PresignDownload(c *gin.Context) {
	fileID := h.parseUintParam(c, "fileId")
	if fileID == 0 {
		return
	}

	result, err := h.uploadService.PresignDownload(c.Request.Context(), fileID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respond(c, http.StatusOK, "Download URL issued successfully", gin.H{
		"key":        result.Key,
		"url":        result.URL,
		"expires_in": result.ExpiresIn,
	})
}
