package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"project-tracker-api/internal/client"
	"project-tracker-api/internal/database"
	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/events"
	"project-tracker-api/internal/metrics"
	"project-tracker-api/internal/response"
)

type testEnv struct {
	db       *gorm.DB
	svc      *Services
	recorder *events.Recorder
	s3       *client.MockS3Client
	metrics  *metrics.Metrics
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	env := &testEnv{
		db:       db,
		recorder: events.NewRecorder(),
		s3:       client.NewMockS3Client(),
		metrics:  metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop()),
	}
	env.svc = NewServices(db, env.recorder, env.s3, env.metrics, zap.NewNop())
	return env
}

func (e *testEnv) user(t *testing.T, email string) *domain.User {
	t.Helper()
	u, err := e.svc.Users.Create(context.Background(), uuid.Nil, &domain.User{Email: email, Name: email, Role: domain.UserRoleMember})
	require.NoError(t, err)
	return u
}

func (e *testEnv) project(t *testing.T, name string) *domain.Project {
	t.Helper()
	p, err := e.svc.Projects.Create(context.Background(), uuid.Nil, &domain.Project{
		Name:     name,
		Status:   domain.ProjectStatusActive,
		Priority: domain.PriorityMedium,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) task(t *testing.T, task *domain.Task) *domain.Task {
	t.Helper()
	if task.Status == "" {
		task.Status = domain.TaskStatusTodo
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	created, err := e.svc.Tasks.Create(context.Background(), uuid.Nil, task)
	require.NoError(t, err)
	return created
}

func appCode(err error) string {
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
