package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/events"
	"project-tracker-api/internal/metrics"
	"project-tracker-api/internal/repository"
)

type workRepos struct {
	projects     repository.Repository[domain.Project]
	epics        repository.Repository[domain.Epic]
	stories      repository.Repository[domain.Story]
	tasks        repository.Repository[domain.Task]
	sprints      repository.Repository[domain.Sprint]
	backlogItems repository.Repository[domain.BacklogItem]
	users        repository.Repository[domain.User]
	teams        repository.Repository[domain.Team]
	companies    repository.Repository[domain.Company]
	hierarchy    repository.HierarchyRepository
}

// rollUp fills task aggregates for items that own tasks through column
func rollUp[T any](h repository.HierarchyRepository, column string, aggregates func(*T) *domain.Aggregates) func(context.Context, []*T) error {
	return func(ctx context.Context, items []*T) error {
		ids := make([]uuid.UUID, 0, len(items))
		for _, item := range items {
			ids = append(ids, idOf(item))
		}
		counts, err := h.CountTasks(ctx, column, ids)
		if err != nil {
			return err
		}
		for _, item := range items {
			c := counts[idOf(item)]
			aggregates(item).SetCounts(c.Total, c.Done)
		}
		return nil
	}
}

func newProjectService(r workRepos, pub events.Publisher, m *metrics.Metrics, logger *zap.Logger) ResourceService[domain.Project] {
	return NewResourceService(Definition[domain.Project]{
		Kind: domain.KindProject,
		Filters: map[string]string{
			"companyId": "company_id",
			"teamId":    "team_id",
			"ownerId":   "owner_id",
			"status":    "status",
			"priority":  "priority",
		},
		Describe: func(p *domain.Project) events.Payload {
			payload := events.Payload{"name": p.Name}
			putID(payload, "companyId", p.CompanyID)
			putID(payload, "teamId", p.TeamID)
			return payload
		},
		Status: func(p *domain.Project) string { return string(p.Status) },
		Prepare: func(ctx context.Context, p *domain.Project) error {
			if err := requireParent(ctx, r.companies, domain.KindCompany, p.CompanyID); err != nil {
				return err
			}
			if err := requireParent(ctx, r.teams, domain.KindTeam, p.TeamID); err != nil {
				return err
			}
			return validateDateRange(p.StartDate, p.DueDate)
		},
		Decorate: rollUp(r.hierarchy, "project_id", func(p *domain.Project) *domain.Aggregates { return &p.Aggregates }),
		AfterCreate: func(context.Context, uuid.UUID, *domain.Project) {
			m.IncrementProjectCreated()
		},
	}, r.projects, pub, logger)
}

func newEpicService(r workRepos, pub events.Publisher, logger *zap.Logger) ResourceService[domain.Epic] {
	return NewResourceService(Definition[domain.Epic]{
		Kind:    domain.KindEpic,
		Filters: map[string]string{"projectId": "project_id", "status": "status", "priority": "priority"},
		Describe: func(e *domain.Epic) events.Payload {
			return events.Payload{"title": e.Title, "projectId": e.ProjectID.String()}
		},
		Status: func(e *domain.Epic) string { return string(e.Status) },
		Prepare: func(ctx context.Context, e *domain.Epic) error {
			_, err := loadParent(ctx, r.projects, domain.KindProject, e.ProjectID)
			return err
		},
		Decorate: rollUp(r.hierarchy, "epic_id", func(e *domain.Epic) *domain.Aggregates { return &e.Aggregates }),
	}, r.epics, pub, logger)
}

// prepareStory takes the project from the epic so a story never straddles projects
func prepareStory(r workRepos) func(context.Context, *domain.Story) error {
	return func(ctx context.Context, s *domain.Story) error {
		if s.EpicID == nil {
			_, err := loadParent(ctx, r.projects, domain.KindProject, s.ProjectID)
			return err
		}
		epic, err := loadParent(ctx, r.epics, domain.KindEpic, *s.EpicID)
		if err != nil {
			return err
		}
		if s.ProjectID != uuid.Nil && s.ProjectID != epic.ProjectID {
			return crossProject(domain.KindStory, domain.KindEpic)
		}
		s.ProjectID = epic.ProjectID
		return nil
	}
}

func newStoryService(r workRepos, pub events.Publisher, logger *zap.Logger) ResourceService[domain.Story] {
	return NewResourceService(Definition[domain.Story]{
		Kind:    domain.KindStory,
		Filters: map[string]string{"projectId": "project_id", "epicId": "epic_id", "status": "status"},
		Describe: func(s *domain.Story) events.Payload {
			p := events.Payload{"title": s.Title, "projectId": s.ProjectID.String()}
			putID(p, "epicId", s.EpicID)
			return p
		},
		Status:   func(s *domain.Story) string { return string(s.Status) },
		Prepare:  prepareStory(r),
		Decorate: rollUp(r.hierarchy, "story_id", func(s *domain.Story) *domain.Aggregates { return &s.Aggregates }),
	}, r.stories, pub, logger)
}

// prepareTask copies the ancestor chain from the closest named parent.
// A story's epic wins over an epic given alongside it.
func prepareTask(r workRepos) func(context.Context, *domain.Task) error {
	return func(ctx context.Context, t *domain.Task) error {
		switch {
		case t.StoryID != nil:
			story, err := loadParent(ctx, r.stories, domain.KindStory, *t.StoryID)
			if err != nil {
				return err
			}
			if t.ProjectID != uuid.Nil && t.ProjectID != story.ProjectID {
				return crossProject(domain.KindTask, domain.KindStory)
			}
			t.ProjectID = story.ProjectID
			t.EpicID = story.EpicID
		case t.EpicID != nil:
			epic, err := loadParent(ctx, r.epics, domain.KindEpic, *t.EpicID)
			if err != nil {
				return err
			}
			if t.ProjectID != uuid.Nil && t.ProjectID != epic.ProjectID {
				return crossProject(domain.KindTask, domain.KindEpic)
			}
			t.ProjectID = epic.ProjectID
		default:
			if _, err := loadParent(ctx, r.projects, domain.KindProject, t.ProjectID); err != nil {
				return err
			}
		}

		if t.SprintID != nil {
			sprint, err := loadParent(ctx, r.sprints, domain.KindSprint, *t.SprintID)
			if err != nil {
				return err
			}
			if sprint.ProjectID != t.ProjectID {
				return crossProject(domain.KindTask, domain.KindSprint)
			}
		}
		return requireParent(ctx, r.users, domain.KindUser, t.AssigneeID)
	}
}

func describeTask(t *domain.Task) events.Payload {
	p := events.Payload{"title": t.Title, "projectId": t.ProjectID.String()}
	putID(p, "epicId", t.EpicID)
	putID(p, "storyId", t.StoryID)
	putID(p, "sprintId", t.SprintID)
	putID(p, "assigneeId", t.AssigneeID)
	return p
}

func newTaskService(r workRepos, notifications NotificationService, pub events.Publisher, m *metrics.Metrics, logger *zap.Logger) ResourceService[domain.Task] {
	notify := func(ctx context.Context, actor uuid.UUID, t *domain.Task) {
		if notifications == nil || t.AssigneeID == nil || *t.AssigneeID == actor {
			return
		}
		if _, err := notifications.NotifyAssignment(ctx, actor, t); err != nil {
			logger.Warn("Failed to create assignment notification",
				zap.String("task_id", t.ID.String()),
				zap.Error(err),
			)
		}
	}

	return NewResourceService(Definition[domain.Task]{
		Kind: domain.KindTask,
		Filters: map[string]string{
			"projectId":  "project_id",
			"epicId":     "epic_id",
			"storyId":    "story_id",
			"sprintId":   "sprint_id",
			"assigneeId": "assignee_id",
			"status":     "status",
			"priority":   "priority",
		},
		Describe: describeTask,
		Status:   func(t *domain.Task) string { return string(t.Status) },
		Prepare:  prepareTask(r),
		AfterCreate: func(ctx context.Context, actor uuid.UUID, t *domain.Task) {
			m.IncrementTaskCreated()
			if t.Status == domain.TaskStatusDone {
				m.IncrementTaskCompleted()
			}
			notify(ctx, actor, t)
		},
		AfterUpdate: func(ctx context.Context, actor uuid.UUID, before, after *domain.Task) {
			if before.Status != domain.TaskStatusDone && after.Status == domain.TaskStatusDone {
				m.IncrementTaskCompleted()
			}
			if !sameID(before.AssigneeID, after.AssigneeID) {
				notify(ctx, actor, after)
			}
		},
	}, r.tasks, pub, logger)
}

func newSprintService(r workRepos, pub events.Publisher, logger *zap.Logger) ResourceService[domain.Sprint] {
	return NewResourceService(Definition[domain.Sprint]{
		Kind:    domain.KindSprint,
		Filters: map[string]string{"projectId": "project_id", "teamId": "team_id", "status": "status"},
		Order:   "start_date ASC, created_at ASC",
		Describe: func(s *domain.Sprint) events.Payload {
			p := events.Payload{"name": s.Name, "projectId": s.ProjectID.String()}
			putID(p, "teamId", s.TeamID)
			return p
		},
		Status: func(s *domain.Sprint) string { return string(s.Status) },
		Prepare: func(ctx context.Context, s *domain.Sprint) error {
			if _, err := loadParent(ctx, r.projects, domain.KindProject, s.ProjectID); err != nil {
				return err
			}
			if err := requireParent(ctx, r.teams, domain.KindTeam, s.TeamID); err != nil {
				return err
			}
			return validateDateRange(s.StartDate, s.EndDate)
		},
	}, r.sprints, pub, logger)
}

func newBacklogItemService(r workRepos, pub events.Publisher, logger *zap.Logger) ResourceService[domain.BacklogItem] {
	return NewResourceService(Definition[domain.BacklogItem]{
		Kind: domain.KindBacklogItem,
		Filters: map[string]string{
			"projectId": "project_id",
			"sprintId":  "sprint_id",
			"storyId":   "story_id",
			"type":      "type",
			"priority":  "priority",
		},
		Order: "rank ASC, created_at ASC",
		Describe: func(b *domain.BacklogItem) events.Payload {
			p := events.Payload{"title": b.Title, "projectId": b.ProjectID.String()}
			putID(p, "sprintId", b.SprintID)
			putID(p, "storyId", b.StoryID)
			return p
		},
		Prepare: func(ctx context.Context, b *domain.BacklogItem) error {
			if _, err := loadParent(ctx, r.projects, domain.KindProject, b.ProjectID); err != nil {
				return err
			}
			if b.SprintID != nil {
				sprint, err := loadParent(ctx, r.sprints, domain.KindSprint, *b.SprintID)
				if err != nil {
					return err
				}
				if sprint.ProjectID != b.ProjectID {
					return crossProject(domain.KindBacklogItem, domain.KindSprint)
				}
			}
			if b.StoryID != nil {
				story, err := loadParent(ctx, r.stories, domain.KindStory, *b.StoryID)
				if err != nil {
					return err
				}
				if story.ProjectID != b.ProjectID {
					return crossProject(domain.KindBacklogItem, domain.KindStory)
				}
			}
			return nil
		},
	}, r.backlogItems, pub, logger)
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func assignmentMessage(t *domain.Task) string {
	return fmt.Sprintf("You have been assigned to %q", t.Title)
}
