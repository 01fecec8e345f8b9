package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationType categorises notifications
type NotificationType string

const (
	NotificationTaskAssigned NotificationType = "TASK_ASSIGNED"
	NotificationGeneric      NotificationType = "GENERIC"
)

// Notification is a persisted, per-user message
type Notification struct {
	BaseModel
	UserID       uuid.UUID        `gorm:"type:uuid;not null;index:idx_notifications_user_read,priority:1" json:"userId"`
	Type         NotificationType `gorm:"type:varchar(50);not null" json:"type"`
	Title        string           `gorm:"type:varchar(255);not null" json:"title"`
	Message      string           `gorm:"type:text" json:"message"`
	ResourceType Kind             `gorm:"type:varchar(50)" json:"resourceType"`
	ResourceID   *uuid.UUID       `gorm:"type:uuid" json:"resourceId"`
	IsRead       bool             `gorm:"not null;default:false;index:idx_notifications_user_read,priority:2" json:"isRead"`
	ReadAt       *time.Time       `gorm:"type:timestamp" json:"readAt,omitempty"`
	Metadata     datatypes.JSON   `json:"metadata" swaggertype:"object"`
}

func (Notification) TableName() string { return "notifications" }
