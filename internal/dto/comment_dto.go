package dto

import (
	"github.com/google/uuid"

	"project-tracker-api/internal/domain"
)

// CreateCommentRequest represents the request to comment on a task
type CreateCommentRequest struct {
	TaskID  uuid.UUID `json:"taskId" binding:"required"`
	Content string    `json:"content" binding:"required,min=1,max=10000"`
}

// ToModel sets the author to the caller
func (r *CreateCommentRequest) ToModel(actor uuid.UUID) *domain.Comment {
	return &domain.Comment{TaskID: r.TaskID, AuthorID: actor, Content: r.Content}
}

// UpdateCommentRequest represents the request to edit a comment
type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=10000"`
}

func (r *UpdateCommentRequest) ApplyTo(c *domain.Comment) {
	c.Content = r.Content
}
