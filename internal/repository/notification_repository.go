package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"project-tracker-api/internal/domain"
)

// NotificationRepository covers notification operations beyond plain CRUD
type NotificationRepository interface {
	MarkAsRead(ctx context.Context, id, userID uuid.UUID, at time.Time) (*domain.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type notificationRepositoryImpl struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new instance of NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepositoryImpl{db: db}
}

// MarkAsRead flags a notification owned by userID as read.
// Marking an already read notification keeps its original read time.
func (r *notificationRepositoryImpl) MarkAsRead(ctx context.Context, id, userID uuid.UUID, at time.Time) (*domain.Notification, error) {
	var notification domain.Notification
	if err := r.db.WithContext(ctx).
		First(&notification, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	if notification.IsRead {
		return &notification, nil
	}

	if err := r.db.WithContext(ctx).
		Model(&notification).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": at,
		}).Error; err != nil {
		return nil, err
	}

	notification.IsRead = true
	notification.ReadAt = &at
	return &notification, nil
}

func (r *notificationRepositoryImpl) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// DeleteReadBefore hard deletes read notifications created before cutoff
func (r *notificationRepositoryImpl) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Unscoped().
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&domain.Notification{})
	return result.RowsAffected, result.Error
}
