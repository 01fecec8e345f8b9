package service

import (
	"context"

	"go.uber.org/zap"

	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/events"
	"project-tracker-api/internal/repository"
)

func newCommentService(comments repository.Repository[domain.Comment], tasks repository.Repository[domain.Task], attachments repository.AttachmentRepository, pub events.Publisher, logger *zap.Logger) ResourceService[domain.Comment] {
	return NewResourceService(Definition[domain.Comment]{
		Kind:    domain.KindComment,
		Filters: map[string]string{"taskId": "task_id", "authorId": "author_id"},
		Order:   "created_at ASC",
		Describe: func(c *domain.Comment) events.Payload {
			return events.Payload{
				"taskId":   c.TaskID.String(),
				"authorId": c.AuthorID.String(),
			}
		},
		Prepare: func(ctx context.Context, c *domain.Comment) error {
			_, err := loadParent(ctx, tasks, domain.KindTask, c.TaskID)
			return err
		},
		Decorate: func(ctx context.Context, items []*domain.Comment) error {
			if attachments == nil {
				return nil
			}
			for _, c := range items {
				found, err := attachments.FindByEntity(ctx, domain.KindComment, c.ID)
				if err != nil {
					return err
				}
				c.Attachments = make([]domain.Attachment, 0, len(found))
				for _, a := range found {
					c.Attachments = append(c.Attachments, *a)
				}
			}
			return nil
		},
	}, comments, pub, logger)
}
