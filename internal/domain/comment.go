package domain

import "github.com/google/uuid"

// Comment represents a comment on a task
type Comment struct {
	BaseModel
	TaskID   uuid.UUID `gorm:"type:uuid;not null;index:idx_comments_task_id" json:"taskId"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index:idx_comments_author_id" json:"authorId"`
	Content  string    `gorm:"type:text;not null" json:"content"`
	// attachments are polymorphic, loaded separately by the repository
	Attachments []Attachment `gorm:"-" json:"attachments,omitempty"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}
