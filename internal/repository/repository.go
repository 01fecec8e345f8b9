package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListOptions filters and pages a collection read.
// Filters map column names to the value they must equal.
type ListOptions struct {
	Filters map[string]interface{}
	Page    int
	Limit   int
	Order   string
}

// Normalize clamps paging to sane bounds
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = DefaultPage
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if o.Order == "" {
		o.Order = "created_at DESC"
	}
	return o
}

// Repository is the data access contract shared by every entity kind
type Repository[T any] interface {
	Create(ctx context.Context, item *T) error
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, opts ListOptions) ([]*T, int64, error)
	Update(ctx context.Context, item *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// gormRepository is the GORM implementation of Repository
type gormRepository[T any] struct {
	db *gorm.DB
}

// NewRepository creates a GORM backed repository for T
func NewRepository[T any](db *gorm.DB) Repository[T] {
	return &gormRepository[T]{db: db}
}

func (r *gormRepository[T]) Create(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *gormRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var item T
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *gormRepository[T]) List(ctx context.Context, opts ListOptions) ([]*T, int64, error) {
	opts = opts.Normalize()

	query := r.db.WithContext(ctx).Model(new(T))
	for column, value := range opts.Filters {
		query = query.Where(column+" = ?", value)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]*T, 0)
	offset := (opts.Page - 1) * opts.Limit
	if err := query.Order(opts.Order).
		Offset(offset).
		Limit(opts.Limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// Update saves every column of item
func (r *gormRepository[T]) Update(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete soft deletes by id; a missing row is reported as gorm.ErrRecordNotFound
func (r *gormRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormRepository[T]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
