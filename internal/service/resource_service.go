package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/events"
	"project-tracker-api/internal/repository"
	"project-tracker-api/internal/response"
)

// Definition describes how one entity kind behaves inside the generic resource service
type Definition[T any] struct {
	Kind domain.Kind
	// Filters maps accepted query parameters to columns
	Filters map[string]string
	// Order overrides the default newest-first list order
	Order string
	// Describe returns the display name and ancestor ids carried by every event
	Describe func(item *T) events.Payload
	// Status returns the lifecycle status of kinds that have one
	Status func(item *T) string
	// Prepare runs before create and update. It may fill denormalised fields or reject the item.
	Prepare func(ctx context.Context, item *T) error
	// Decorate fills derived fields after reads and writes
	Decorate func(ctx context.Context, items []*T) error
	// AfterCreate and AfterUpdate run once the change is committed and published
	AfterCreate func(ctx context.Context, actor uuid.UUID, item *T)
	AfterUpdate func(ctx context.Context, actor uuid.UUID, before, after *T)
}

// ResourceService is the CRUD contract shared by every entity kind.
// Each successful mutation publishes one event.
type ResourceService[T any] interface {
	Kind() domain.Kind
	Filters() map[string]string
	Create(ctx context.Context, actor uuid.UUID, item *T) (*T, error)
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, opts repository.ListOptions) ([]*T, int64, error)
	Update(ctx context.Context, actor uuid.UUID, id uuid.UUID, apply func(*T)) (*T, error)
	Delete(ctx context.Context, actor uuid.UUID, id uuid.UUID) error
}

// resourceServiceImpl is the implementation of ResourceService
type resourceServiceImpl[T any] struct {
	def       Definition[T]
	repo      repository.Repository[T]
	publisher events.Publisher
	logger    *zap.Logger
}

// NewResourceService creates a resource service for one kind
func NewResourceService[T any](def Definition[T], repo repository.Repository[T], publisher events.Publisher, logger *zap.Logger) ResourceService[T] {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &resourceServiceImpl[T]{
		def:       def,
		repo:      repo,
		publisher: publisher,
		logger:    logger.With(zap.String("kind", string(def.Kind))),
	}
}

func (s *resourceServiceImpl[T]) Kind() domain.Kind { return s.def.Kind }

func (s *resourceServiceImpl[T]) Filters() map[string]string { return s.def.Filters }

func (s *resourceServiceImpl[T]) Create(ctx context.Context, actor uuid.UUID, item *T) (*T, error) {
	if s.def.Prepare != nil {
		if err := s.def.Prepare(ctx, item); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, s.storeError("create", err)
	}

	if err := s.decorate(ctx, item); err != nil {
		return nil, err
	}

	payload := s.payload(item)
	if s.def.Status != nil {
		payload["status"] = s.def.Status(item)
	}
	s.publish(ctx, events.ActionCreated, payload)

	if s.def.AfterCreate != nil {
		s.def.AfterCreate(ctx, actor, item)
	}
	return item, nil
}

func (s *resourceServiceImpl[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.decorate(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *resourceServiceImpl[T]) List(ctx context.Context, opts repository.ListOptions) ([]*T, int64, error) {
	if opts.Order == "" {
		opts.Order = s.def.Order
	}
	items, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, 0, s.storeError("list", err)
	}
	if s.def.Decorate != nil && len(items) > 0 {
		if err := s.def.Decorate(ctx, items); err != nil {
			return nil, 0, response.NewAppError(response.ErrCodeInternal, "Failed to load "+s.def.Kind.Plural(), err.Error())
		}
	}
	return items, total, nil
}

// Update loads the current row, applies the change and saves every column.
// The UPDATED event carries status and previousStatus only when the status
// moved, and previous<Parent>Id for every reference that changed.
func (s *resourceServiceImpl[T]) Update(ctx context.Context, actor uuid.UUID, id uuid.UUID, apply func(*T)) (*T, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *item

	apply(item)

	if s.def.Prepare != nil {
		if err := s.def.Prepare(ctx, item); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, s.storeError("update", err)
	}

	if err := s.decorate(ctx, item); err != nil {
		return nil, err
	}

	payload := s.payload(item)
	markMoves(payload, s.payload(&before))
	if s.def.Status != nil {
		previous, current := s.def.Status(&before), s.def.Status(item)
		if previous != current {
			payload["status"] = current
			payload["previousStatus"] = previous
		}
	}
	s.publish(ctx, events.ActionUpdated, payload)

	if s.def.AfterUpdate != nil {
		s.def.AfterUpdate(ctx, actor, &before, item)
	}
	return item, nil
}

func (s *resourceServiceImpl[T]) Delete(ctx context.Context, actor uuid.UUID, id uuid.UUID) error {
	item, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.notFound(id)
		}
		return s.storeError("delete", err)
	}

	s.publish(ctx, events.ActionDeleted, s.payload(item))
	return nil
}

func (s *resourceServiceImpl[T]) find(ctx context.Context, id uuid.UUID) (*T, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.notFound(id)
		}
		return nil, s.storeError("load", err)
	}
	return item, nil
}

func (s *resourceServiceImpl[T]) decorate(ctx context.Context, item *T) error {
	if s.def.Decorate == nil {
		return nil
	}
	if err := s.def.Decorate(ctx, []*T{item}); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to load "+s.def.Kind.Label(), err.Error())
	}
	return nil
}

func (s *resourceServiceImpl[T]) payload(item *T) events.Payload {
	payload := events.Payload{}
	if s.def.Describe != nil {
		for k, v := range s.def.Describe(item) {
			payload[k] = v
		}
	}
	payload["id"] = idOf(item).String()
	return payload
}

// publish never fails the request: the change is already committed
func (s *resourceServiceImpl[T]) publish(ctx context.Context, action events.Action, payload events.Payload) {
	msg := events.NewMessage(s.def.Kind, action, payload)
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("type", string(msg.Type)),
			zap.Error(err),
		)
	}
}

func (s *resourceServiceImpl[T]) notFound(id uuid.UUID) error {
	return response.NewNotFoundError(s.def.Kind.Label()+" not found", id.String())
}

func (s *resourceServiceImpl[T]) storeError(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return response.NewConflictError(s.def.Kind.Label()+" already exists", err.Error())
	}
	s.logger.Error("Store operation failed", zap.String("op", op), zap.Error(err))
	return response.NewAppError(response.ErrCodeInternal, "Failed to "+op+" "+s.def.Kind.Label(), err.Error())
}

type identifiable interface {
	GetID() uuid.UUID
}

func idOf(item any) uuid.UUID {
	if e, ok := item.(identifiable); ok {
		return e.GetID()
	}
	return uuid.Nil
}
