package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"project-tracker-api/internal/domain"
)

// AttachmentRepository defines the interface for attachment data access
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)
	FindByEntity(ctx context.Context, entityType domain.Kind, entityID uuid.UUID) ([]*domain.Attachment, error)
	List(ctx context.Context, opts ListOptions) ([]*domain.Attachment, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindExpiredTemp(ctx context.Context, now time.Time) ([]*domain.Attachment, error)
	Confirm(ctx context.Context, id uuid.UUID, entityType domain.Kind, entityID uuid.UUID) (*domain.Attachment, error)
	DeleteBatch(ctx context.Context, ids []uuid.UUID) error
}

// attachmentRepositoryImpl is the GORM implementation of AttachmentRepository
type attachmentRepositoryImpl struct {
	Repository[domain.Attachment]
	db *gorm.DB
}

// NewAttachmentRepository creates a new instance of AttachmentRepository
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepositoryImpl{
		Repository: NewRepository[domain.Attachment](db),
		db:         db,
	}
}

// FindByEntity returns confirmed attachments bound to one entity, newest first
func (r *attachmentRepositoryImpl) FindByEntity(ctx context.Context, entityType domain.Kind, entityID uuid.UUID) ([]*domain.Attachment, error) {
	attachments := make([]*domain.Attachment, 0)
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ? AND status = ?", entityType, entityID, domain.AttachmentStatusConfirmed).
		Order("created_at DESC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// FindExpiredTemp finds temporary attachments whose upload window has passed
func (r *attachmentRepositoryImpl) FindExpiredTemp(ctx context.Context, now time.Time) ([]*domain.Attachment, error) {
	var attachments []*domain.Attachment
	if err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", domain.AttachmentStatusTemp, now).
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// Confirm binds a TEMP attachment to an entity.
// Only TEMP rows match, so confirming twice reports gorm.ErrRecordNotFound.
func (r *attachmentRepositoryImpl) Confirm(ctx context.Context, id uuid.UUID, entityType domain.Kind, entityID uuid.UUID) (*domain.Attachment, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Attachment{}).
		Where("id = ? AND status = ?", id, domain.AttachmentStatusTemp).
		Updates(map[string]interface{}{
			"status":      domain.AttachmentStatusConfirmed,
			"entity_type": entityType,
			"entity_id":   entityID,
			"expires_at":  nil,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// DeleteBatch deletes multiple attachments by their IDs
func (r *attachmentRepositoryImpl) DeleteBatch(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&domain.Attachment{}).Error
}
