package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/events"
	"project-tracker-api/internal/repository"
	"project-tracker-api/internal/response"
)

// NotificationService adds read tracking and assignment fan-out to notification CRUD
type NotificationService interface {
	ResourceService[domain.Notification]
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	NotifyAssignment(ctx context.Context, actor uuid.UUID, task *domain.Task) (*domain.Notification, error)
	PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error)
}

type notificationServiceImpl struct {
	ResourceService[domain.Notification]
	repo      repository.NotificationRepository
	users     repository.Repository[domain.User]
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func describeNotification(n *domain.Notification) events.Payload {
	p := events.Payload{
		"title":   n.Title,
		"message": n.Message,
		"userId":  n.UserID.String(),
		"isRead":  n.IsRead,
	}
	if n.ResourceType != "" {
		p["resourceType"] = string(n.ResourceType)
	}
	putID(p, "resourceId", n.ResourceID)
	return p
}

// NewNotificationService creates a new instance of NotificationService
func NewNotificationService(base repository.Repository[domain.Notification], repo repository.NotificationRepository, users repository.Repository[domain.User], pub events.Publisher, logger *zap.Logger) NotificationService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &notificationServiceImpl{
		ResourceService: NewResourceService(Definition[domain.Notification]{
			Kind: domain.KindNotification,
			Filters: map[string]string{
				"userId":       "user_id",
				"isRead":       "is_read",
				"type":         "type",
				"resourceType": "resource_type",
			},
			Describe: describeNotification,
			Prepare: func(ctx context.Context, n *domain.Notification) error {
				if n.ResourceType != "" && !n.ResourceType.IsValid() {
					return response.NewValidationError("Unknown resource type", string(n.ResourceType))
				}
				_, err := loadParent(ctx, users, domain.KindUser, n.UserID)
				return err
			},
		}, base, pub, logger),
		repo:      repo,
		users:     users,
		publisher: pub,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// MarkAsRead flags the caller's notification as read and publishes NOTIFICATION_UPDATED.
// Only the owner may mark a notification; anyone else sees not found.
func (s *notificationServiceImpl) MarkAsRead(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error) {
	n, err := s.repo.MarkAsRead(ctx, id, userID, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Notification not found", id.String())
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to mark notification as read", err.Error())
	}

	payload := describeNotification(n)
	payload["id"] = n.ID.String()
	msg := events.NewMessage(domain.KindNotification, events.ActionUpdated, payload)
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.Warn("Failed to publish event", zap.String("type", string(msg.Type)), zap.Error(err))
	}
	return n, nil
}

func (s *notificationServiceImpl) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, response.NewAppError(response.ErrCodeInternal, "Failed to count notifications", err.Error())
	}
	return count, nil
}

// NotifyAssignment tells the task's assignee about the assignment
func (s *notificationServiceImpl) NotifyAssignment(ctx context.Context, actor uuid.UUID, task *domain.Task) (*domain.Notification, error) {
	if task.AssigneeID == nil {
		return nil, nil
	}
	metadata, err := json.Marshal(map[string]string{
		"actorId":   actor.String(),
		"projectId": task.ProjectID.String(),
	})
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, actor, &domain.Notification{
		UserID:       *task.AssigneeID,
		Type:         domain.NotificationTaskAssigned,
		Title:        "Task assigned",
		Message:      assignmentMessage(task),
		ResourceType: domain.KindTask,
		ResourceID:   ptr(task.ID),
		Metadata:     datatypes.JSON(metadata),
	})
}

// PurgeRead hard deletes read notifications older than the retention window
func (s *notificationServiceImpl) PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.repo.DeleteReadBefore(ctx, s.now().Add(-olderThan))
}
