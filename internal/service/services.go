package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-tracker-api/internal/client"
	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/events"
	"project-tracker-api/internal/metrics"
	"project-tracker-api/internal/repository"
)

// Services groups every service the HTTP layer and the jobs depend on
type Services struct {
	Companies     ResourceService[domain.Company]
	Departments   ResourceService[domain.Department]
	Teams         ResourceService[domain.Team]
	Users         ResourceService[domain.User]
	Locations     ResourceService[domain.Location]
	Devices       ResourceService[domain.Device]
	Projects      ResourceService[domain.Project]
	Epics         ResourceService[domain.Epic]
	Stories       ResourceService[domain.Story]
	Tasks         ResourceService[domain.Task]
	Sprints       ResourceService[domain.Sprint]
	BacklogItems  ResourceService[domain.BacklogItem]
	Comments      ResourceService[domain.Comment]
	Notifications NotificationService
	Attachments   AttachmentService
}

// NewServices wires repositories and services over one database handle.
// A nil s3Client disables the attachment service.
func NewServices(db *gorm.DB, pub events.Publisher, s3Client client.S3ClientInterface, m *metrics.Metrics, logger *zap.Logger) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewWithRegistry(nil, logger)
	}

	org := organizationRepos{
		companies:   repository.NewRepository[domain.Company](db),
		departments: repository.NewRepository[domain.Department](db),
		teams:       repository.NewRepository[domain.Team](db),
		users:       repository.NewRepository[domain.User](db),
		locations:   repository.NewRepository[domain.Location](db),
		devices:     repository.NewRepository[domain.Device](db),
	}
	work := workRepos{
		projects:     repository.NewRepository[domain.Project](db),
		epics:        repository.NewRepository[domain.Epic](db),
		stories:      repository.NewRepository[domain.Story](db),
		tasks:        repository.NewRepository[domain.Task](db),
		sprints:      repository.NewRepository[domain.Sprint](db),
		backlogItems: repository.NewRepository[domain.BacklogItem](db),
		users:        org.users,
		teams:        org.teams,
		companies:    org.companies,
		hierarchy:    repository.NewHierarchyRepository(db),
	}
	comments := repository.NewRepository[domain.Comment](db)
	attachments := repository.NewAttachmentRepository(db)

	notifications := NewNotificationService(
		repository.NewRepository[domain.Notification](db),
		repository.NewNotificationRepository(db),
		org.users, pub, logger,
	)

	s := &Services{
		Companies:     newCompanyService(org, pub, logger),
		Departments:   newDepartmentService(org, pub, logger),
		Teams:         newTeamService(org, pub, logger),
		Users:         newUserService(org, pub, logger),
		Locations:     newLocationService(org, pub, logger),
		Devices:       newDeviceService(org, pub, logger),
		Projects:      newProjectService(work, pub, m, logger),
		Epics:         newEpicService(work, pub, logger),
		Stories:       newStoryService(work, pub, logger),
		Tasks:         newTaskService(work, notifications, pub, m, logger),
		Sprints:       newSprintService(work, pub, logger),
		BacklogItems:  newBacklogItemService(work, pub, logger),
		Comments:      newCommentService(comments, work.tasks, attachments, pub, logger),
		Notifications: notifications,
	}

	if s3Client != nil {
		exists := attachableLookup(map[domain.Kind]func(context.Context, uuid.UUID) (bool, error){
			domain.KindProject: work.projects.Exists,
			domain.KindEpic:    work.epics.Exists,
			domain.KindStory:   work.stories.Exists,
			domain.KindTask:    work.tasks.Exists,
			domain.KindComment: comments.Exists,
		})
		s.Attachments = NewAttachmentService(attachments, s3Client, exists, pub, logger)
	}
	return s
}

func attachableLookup(byKind map[domain.Kind]func(context.Context, uuid.UUID) (bool, error)) EntityExists {
	return func(ctx context.Context, kind domain.Kind, id uuid.UUID) (bool, error) {
		check, ok := byKind[kind]
		if !ok {
			return false, fmt.Errorf("kind %s does not accept attachments", kind)
		}
		return check(ctx, id)
	}
}
