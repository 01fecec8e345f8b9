package dto

import (
	"time"

	"github.com/google/uuid"

	"project-tracker-api/internal/domain"
)

// PresignedURLRequest represents the request to generate a presigned upload URL
// @Description entityType is one of PROJECT, EPIC, STORY, TASK, COMMENT
type PresignedURLRequest struct {
	EntityType  string `json:"entityType" binding:"required" example:"TASK"`
	FileName    string `json:"fileName" binding:"required,max=255" example:"wireframe.png"`
	FileSize    int64  `json:"fileSize" binding:"required,gt=0" example:"204800"`
	ContentType string `json:"contentType" binding:"required" example:"image/png"`
}

// PresignedURLResponse represents the response containing the presigned URL
type PresignedURLResponse struct {
	AttachmentID uuid.UUID `json:"attachmentId"`
	UploadURL    string    `json:"uploadUrl"`
	FileKey      string    `json:"fileKey"`
	ExpiresIn    int       `json:"expiresIn"` // seconds
}

// ConfirmAttachmentRequest binds an uploaded file to its entity
type ConfirmAttachmentRequest struct {
	EntityType string    `json:"entityType" binding:"required" example:"TASK"`
	EntityID   uuid.UUID `json:"entityId" binding:"required"`
}

// AttachmentResponse represents the attachment metadata response
type AttachmentResponse struct {
	ID          uuid.UUID  `json:"id"`
	EntityType  string     `json:"entityType"`
	EntityID    *uuid.UUID `json:"entityId"`
	Status      string     `json:"status"`
	FileName    string     `json:"fileName"`
	FileURL     string     `json:"fileUrl"`
	FileSize    int64      `json:"fileSize"`
	ContentType string     `json:"contentType"`
	UploadedBy  uuid.UUID  `json:"uploadedBy"`
	UploadedAt  time.Time  `json:"uploadedAt"`
	ExpiresAt   *time.Time `json:"expiresAt"`
}

// NewAttachmentResponse converts the stored row; fileURL is the resolved download URL
func NewAttachmentResponse(a *domain.Attachment, fileURL string) AttachmentResponse {
	return AttachmentResponse{
		ID:          a.ID,
		EntityType:  string(a.EntityType),
		EntityID:    a.EntityID,
		Status:      string(a.Status),
		FileName:    a.FileName,
		FileURL:     fileURL,
		FileSize:    a.FileSize,
		ContentType: a.ContentType,
		UploadedBy:  a.UploadedBy,
		UploadedAt:  a.CreatedAt,
		ExpiresAt:   a.ExpiresAt,
	}
}
