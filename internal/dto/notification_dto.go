package dto

import (
	"encoding/json"

	"github.com/google/uuid"

	"project-tracker-api/internal/domain"
)

// CreateNotificationRequest represents the request to send a notification to a user
type CreateNotificationRequest struct {
	UserID       uuid.UUID       `json:"userId" binding:"required"`
	Type         string          `json:"type" binding:"omitempty,oneof=TASK_ASSIGNED GENERIC"`
	Title        string          `json:"title" binding:"required,min=1,max=255" example:"Release freeze"`
	Message      string          `json:"message" binding:"max=2000"`
	ResourceType string          `json:"resourceType" binding:"omitempty"`
	ResourceID   *uuid.UUID      `json:"resourceId"`
	Metadata     json.RawMessage `json:"metadata" swaggertype:"object"`
}

func (r *CreateNotificationRequest) ToModel(uuid.UUID) *domain.Notification {
	return &domain.Notification{
		UserID:       r.UserID,
		Type:         domain.NotificationType(orDefault(r.Type, string(domain.NotificationGeneric))),
		Title:        r.Title,
		Message:      r.Message,
		ResourceType: domain.Kind(r.ResourceType),
		ResourceID:   r.ResourceID,
		Metadata:     jsonOrNil(r.Metadata),
	}
}

// UpdateNotificationRequest edits the text of a notification
type UpdateNotificationRequest struct {
	Title   *string `json:"title" binding:"omitempty,min=1,max=255"`
	Message *string `json:"message" binding:"omitempty,max=2000"`
}

func (r *UpdateNotificationRequest) ApplyTo(n *domain.Notification) {
	setString(&n.Title, r.Title)
	setString(&n.Message, r.Message)
}
