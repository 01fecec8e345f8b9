package domain

import (
	"time"

	"github.com/google/uuid"
)

// AttachmentStatus represents the status of an attachment
type AttachmentStatus string

const (
	AttachmentStatusTemp      AttachmentStatus = "TEMP"      // uploaded, not yet bound to an entity
	AttachmentStatusConfirmed AttachmentStatus = "CONFIRMED" // bound to an entity
)

// attachableKinds are the entity kinds a file may be bound to
var attachableKinds = map[Kind]bool{
	KindProject: true,
	KindEpic:    true,
	KindStory:   true,
	KindTask:    true,
	KindComment: true,
}

// IsAttachable reports whether files may be attached to kind
func IsAttachable(kind Kind) bool {
	return attachableKinds[kind]
}

// Attachment is a file stored in S3 and bound polymorphically to an entity.
// EntityID references several tables so it carries no foreign key.
type Attachment struct {
	BaseModel
	EntityType  Kind             `gorm:"type:varchar(50);not null;index:idx_attachments_entity,priority:1" json:"entityType"`
	EntityID    *uuid.UUID       `gorm:"type:uuid;index:idx_attachments_entity,priority:2" json:"entityId"`
	Status      AttachmentStatus `gorm:"type:varchar(20);not null;default:'TEMP';index:idx_attachments_status" json:"status"`
	FileName    string           `gorm:"type:varchar(255);not null" json:"fileName"`
	FileURL     string           `gorm:"type:text;not null" json:"fileUrl"` // S3 key, not a full URL
	FileSize    int64            `gorm:"not null" json:"fileSize"`
	ContentType string           `gorm:"type:varchar(100);not null" json:"contentType"`
	UploadedBy  uuid.UUID        `gorm:"type:uuid;not null;index:idx_attachments_uploaded_by" json:"uploadedBy"`
	ExpiresAt   *time.Time       `gorm:"type:timestamp;index:idx_attachments_expires_at" json:"expiresAt"`
}

// TableName specifies the table name for Attachment
func (Attachment) TableName() string {
	return "attachments"
}
