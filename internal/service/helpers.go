package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/events"
	"project-tracker-api/internal/repository"
	"project-tracker-api/internal/response"
)

func putID(p events.Payload, key string, id *uuid.UUID) {
	if id != nil && *id != uuid.Nil {
		p[key] = id.String()
	}
}

// markMoves adds previous<Field> to current for every reference id that
// changed or was cleared since before
func markMoves(current, before events.Payload) {
	for field, old := range before {
		if field == "id" || !strings.HasSuffix(field, "Id") {
			continue
		}
		if now, ok := current[field]; ok && now == old {
			continue
		}
		current["previous"+strings.ToUpper(field[:1])+field[1:]] = old
	}
}

func ptr(id uuid.UUID) *uuid.UUID {
	return &id
}

// loadParent fetches a referenced row, turning a missing row into a validation error
func loadParent[T any](ctx context.Context, repo repository.Repository[T], kind domain.Kind, id uuid.UUID) (*T, error) {
	if id == uuid.Nil {
		return nil, response.NewValidationError(kind.Label()+" id is required", "")
	}
	item, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewValidationError(kind.Label()+" not found", id.String())
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load "+kind.Label(), err.Error())
	}
	return item, nil
}

// requireParent checks an optional reference
func requireParent[T any](ctx context.Context, repo repository.Repository[T], kind domain.Kind, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	_, err := loadParent(ctx, repo, kind, *id)
	return err
}

func crossProject(child, parent domain.Kind) error {
	return response.NewValidationError(parent.Label()+" belongs to a different project", "cannot attach "+child.Label()+" across projects")
}

func crossCompany(parent domain.Kind) error {
	return response.NewValidationError(parent.Label()+" belongs to a different company", "")
}

func validateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return response.NewValidationError("Start date cannot be after due date", "")
	}
	return nil
}
