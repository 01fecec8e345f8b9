package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/dto"
	"project-tracker-api/internal/response"
	"project-tracker-api/internal/service"
)

// AttachmentHandler handles attachment-related HTTP requests
type AttachmentHandler struct {
	attachmentService service.AttachmentService
	logger            *zap.Logger
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(attachmentService service.AttachmentService, logger *zap.Logger) *AttachmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttachmentHandler{
		attachmentService: attachmentService,
		logger:            logger,
	}
}

func (h *AttachmentHandler) Register(rg *gin.RouterGroup) *gin.RouterGroup {
	g := rg.Group("/" + domain.KindAttachment.Plural())
	g.POST("/presigned-url", h.GeneratePresignedURL)
	g.POST("/:id/confirm", h.ConfirmAttachment)
	g.GET("", h.ListAttachments)
	g.GET("/:id", h.GetAttachment)
	g.DELETE("/:id", h.DeleteAttachment)
	return g
}

// GeneratePresignedURL godoc
// @Summary      Generate a presigned upload URL
// @Description  Creates a TEMP attachment and returns a PUT URL valid for 5 minutes.
// @Description  Unconfirmed uploads are removed after one hour.
// @Tags         attachments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PresignedURLRequest true "File metadata"
// @Success      200 {object} response.SuccessResponse{data=dto.PresignedURLResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /attachments/presigned-url [post]
func (h *AttachmentHandler) GeneratePresignedURL(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.PresignedURLRequest
	if !bind(c, &req) {
		return
	}

	resp, err := h.attachmentService.Presign(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	h.logger.Info("Presigned URL generated",
		zap.String("attachment_id", resp.AttachmentID.String()),
		zap.String("file_key", resp.FileKey),
		zap.String("user_id", userID.String()),
	)
	response.SendSuccess(c, http.StatusOK, resp)
}

// ConfirmAttachment godoc
// @Summary      Confirm an uploaded attachment
// @Description  Binds a TEMP attachment to an entity and publishes ATTACHMENT_CREATED
// @Tags         attachments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Attachment ID (UUID)"
// @Param        request body dto.ConfirmAttachmentRequest true "Target entity"
// @Success      200 {object} response.SuccessResponse{data=dto.AttachmentResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse
// @Router       /attachments/{id}/confirm [post]
func (h *AttachmentHandler) ConfirmAttachment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.ConfirmAttachmentRequest
	if !bind(c, &req) {
		return
	}

	resp, err := h.attachmentService.Confirm(c.Request.Context(), userID, id, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, resp)
}

// GetAttachment godoc
// @Summary      Get attachment metadata
// @Tags         attachments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Attachment ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.AttachmentResponse}
// @Failure      404 {object} response.ErrorResponse
// @Router       /attachments/{id} [get]
func (h *AttachmentHandler) GetAttachment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	resp, err := h.attachmentService.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, resp)
}

// ListAttachments godoc
// @Summary      List attachments
// @Tags         attachments
// @Produce      json
// @Security     BearerAuth
// @Param        entityType query string false "PROJECT, EPIC, STORY, TASK or COMMENT"
// @Param        entityId query string false "Entity ID (UUID)"
// @Param        status query string false "TEMP or CONFIRMED"
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(20)
// @Success      200 {object} response.SuccessResponse{data=response.PaginatedData}
// @Router       /attachments [get]
func (h *AttachmentHandler) ListAttachments(c *gin.Context) {
	opts, err := listOptions(c, service.AttachmentFilters)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	items, total, err := h.attachmentService.List(c.Request.Context(), opts)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendPaginated(c, http.StatusOK, items, total, opts.Page, opts.Limit)
}

// DeleteAttachment godoc
// @Summary      Delete an attachment
// @Description  Only the uploader can delete. The stored file is removed along with the record.
// @Tags         attachments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Attachment ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=map[string]string}
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /attachments/{id} [delete]
func (h *AttachmentHandler) DeleteAttachment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.attachmentService.Delete(c.Request.Context(), userID, id); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, map[string]string{"message": "Attachment deleted successfully"})
}
