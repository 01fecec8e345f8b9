package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/events"
	"project-tracker-api/internal/repository"
	"project-tracker-api/internal/response"
)

func TestResourceService_CreatePublishesEvent(t *testing.T) {
	env := setupServices(t)

	p := env.project(t, "Apollo")

	msg, ok := env.recorder.Last()
	require.True(t, ok)
	assert.Equal(t, events.Type("PROJECT_CREATED"), msg.Type)
	assert.Equal(t, p.ID.String(), msg.Payload["id"])
	assert.Equal(t, "Apollo", msg.Payload["name"])
	assert.Equal(t, "ACTIVE", msg.Payload["status"])
}

func TestResourceService_UpdateStatusTransition(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	p := env.project(t, "Apollo")
	env.recorder.Reset()

	t.Run("status change carries previous status", func(t *testing.T) {
		updated, err := env.svc.Projects.Update(ctx, uuid.Nil, p.ID, func(p *domain.Project) {
			p.Status = domain.ProjectStatusCompleted
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ProjectStatusCompleted, updated.Status)

		msg, ok := env.recorder.Last()
		require.True(t, ok)
		assert.Equal(t, events.Type("PROJECT_UPDATED"), msg.Type)
		assert.Equal(t, "COMPLETED", msg.Payload["status"])
		assert.Equal(t, "ACTIVE", msg.Payload["previousStatus"])
	})

	t.Run("unchanged status is omitted", func(t *testing.T) {
		_, err := env.svc.Projects.Update(ctx, uuid.Nil, p.ID, func(p *domain.Project) {
			p.Description = "moon"
		})
		require.NoError(t, err)

		msg, ok := env.recorder.Last()
		require.True(t, ok)
		assert.NotContains(t, msg.Payload, "status")
		assert.NotContains(t, msg.Payload, "previousStatus")
	})
}

func TestResourceService_Delete(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	p := env.project(t, "Apollo")
	env.recorder.Reset()

	require.NoError(t, env.svc.Projects.Delete(ctx, uuid.Nil, p.ID))

	msg, ok := env.recorder.Last()
	require.True(t, ok)
	assert.Equal(t, events.Type("PROJECT_DELETED"), msg.Type)
	assert.Equal(t, "Apollo", msg.Payload["name"])

	_, err := env.svc.Projects.Get(ctx, p.ID)
	assert.Equal(t, response.ErrCodeNotFound, appCode(err))

	err = env.svc.Projects.Delete(ctx, uuid.Nil, p.ID)
	assert.Equal(t, response.ErrCodeNotFound, appCode(err))
	assert.Len(t, env.recorder.Messages(), 1)
}

func TestResourceService_PublishFailureKeepsChange(t *testing.T) {
	env := setupServices(t)
	env.recorder.Err = errors.New("redis down")

	p := env.project(t, "Apollo")

	got, err := env.svc.Projects.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Apollo", got.Name)
	assert.Empty(t, env.recorder.Messages())
}

func TestResourceService_DuplicateIsConflict(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	env.user(t, "ada@example.com")

	_, err := env.svc.Users.Create(ctx, uuid.Nil, &domain.User{Email: "ada@example.com", Name: "Ada"})
	assert.Equal(t, response.ErrCodeAlreadyExists, appCode(err))
}

func TestResourceService_ListFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)

	company, err := env.svc.Companies.Create(ctx, uuid.Nil, &domain.Company{Name: "Acme"})
	require.NoError(t, err)
	for _, name := range []string{"Ops", "Eng", "Design"} {
		_, err := env.svc.Departments.Create(ctx, uuid.Nil, &domain.Department{CompanyID: company.ID, Name: name})
		require.NoError(t, err)
	}

	items, total, err := env.svc.Departments.List(ctx, repository.ListOptions{
		Filters: map[string]interface{}{"company_id": company.ID},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 3)
	assert.Equal(t, "Design", items[0].Name)
	assert.Equal(t, "Ops", items[2].Name)

	assert.Equal(t, "company_id", env.svc.Departments.Filters()["companyId"])
	assert.Equal(t, domain.KindDepartment, env.svc.Departments.Kind())
}

func TestResourceService_MissingParentIsValidation(t *testing.T) {
	env := setupServices(t)

	_, err := env.svc.Departments.Create(context.Background(), uuid.Nil, &domain.Department{CompanyID: uuid.New(), Name: "Ghost"})
	assert.Equal(t, response.ErrCodeValidation, appCode(err))
	assert.Empty(t, env.recorder.Messages())
}
