package dto

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"project-tracker-api/internal/domain"
)

var errDateRange = errors.New("startDate must be before or equal to dueDate")

func checkRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return errDateRange
	}
	return nil
}

// CreateProjectRequest represents the request to create a new project
// @Description startDate must be before or equal to dueDate if both are provided.
// @Description ownerId defaults to the caller.
type CreateProjectRequest struct {
	CompanyID   *uuid.UUID `json:"companyId"`
	TeamID      *uuid.UUID `json:"teamId"`
	OwnerID     *uuid.UUID `json:"ownerId"`
	Name        string     `json:"name" binding:"required,min=2,max=255" example:"Q1 Product Launch"`
	Description string     `json:"description" binding:"max=5000"`
	Status      string     `json:"status" binding:"omitempty,oneof=PLANNING ACTIVE ON_HOLD COMPLETED CANCELLED" example:"PLANNING"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL" example:"MEDIUM"`
	StartDate   *time.Time `json:"startDate,omitempty" example:"2024-01-01T00:00:00Z"`
	DueDate     *time.Time `json:"dueDate,omitempty" example:"2024-03-31T23:59:59Z"`
}

func (r *CreateProjectRequest) Validate() error { return checkRange(r.StartDate, r.DueDate) }

func (r *CreateProjectRequest) ToModel(actor uuid.UUID) *domain.Project {
	p := &domain.Project{
		CompanyID:   r.CompanyID,
		TeamID:      r.TeamID,
		OwnerID:     r.OwnerID,
		Name:        r.Name,
		Description: r.Description,
		Status:      domain.ProjectStatus(orDefault(r.Status, string(domain.ProjectStatusPlanning))),
		Priority:    domain.Priority(orDefault(r.Priority, string(domain.PriorityMedium))),
		StartDate:   r.StartDate,
		DueDate:     r.DueDate,
	}
	if p.OwnerID == nil && actor != uuid.Nil {
		p.OwnerID = &actor
	}
	return p
}

// UpdateProjectRequest represents the request to update a project. All fields are optional.
type UpdateProjectRequest struct {
	TeamID      *uuid.UUID `json:"teamId"`
	OwnerID     *uuid.UUID `json:"ownerId"`
	Name        *string    `json:"name" binding:"omitempty,min=2,max=255"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
	Status      *string    `json:"status" binding:"omitempty,oneof=PLANNING ACTIVE ON_HOLD COMPLETED CANCELLED"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

func (r *UpdateProjectRequest) Validate() error { return checkRange(r.StartDate, r.DueDate) }

func (r *UpdateProjectRequest) ApplyTo(p *domain.Project) {
	setUUID(&p.TeamID, r.TeamID)
	setUUID(&p.OwnerID, r.OwnerID)
	setString(&p.Name, r.Name)
	setString(&p.Description, r.Description)
	if r.Status != nil {
		p.Status = domain.ProjectStatus(*r.Status)
	}
	if r.Priority != nil {
		p.Priority = domain.Priority(*r.Priority)
	}
	if r.StartDate != nil {
		p.StartDate = r.StartDate
	}
	if r.DueDate != nil {
		p.DueDate = r.DueDate
	}
}

// CreateEpicRequest represents the request to create an epic
type CreateEpicRequest struct {
	ProjectID   uuid.UUID `json:"projectId" binding:"required"`
	Title       string    `json:"title" binding:"required,min=1,max=255" example:"Checkout redesign"`
	Description string    `json:"description" binding:"max=5000"`
	Status      string    `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority    string    `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
}

func (r *CreateEpicRequest) ToModel(uuid.UUID) *domain.Epic {
	return &domain.Epic{
		ProjectID:   r.ProjectID,
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.EpicStatus(orDefault(r.Status, string(domain.EpicStatusTodo))),
		Priority:    domain.Priority(orDefault(r.Priority, string(domain.PriorityMedium))),
	}
}

type UpdateEpicRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Status      *string `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority    *string `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
}

func (r *UpdateEpicRequest) ApplyTo(e *domain.Epic) {
	setString(&e.Title, r.Title)
	setString(&e.Description, r.Description)
	if r.Status != nil {
		e.Status = domain.EpicStatus(*r.Status)
	}
	if r.Priority != nil {
		e.Priority = domain.Priority(*r.Priority)
	}
}

// CreateStoryRequest represents the request to create a story.
// @Description projectId may be omitted when epicId is given; it is taken from the epic.
type CreateStoryRequest struct {
	ProjectID   uuid.UUID  `json:"projectId"`
	EpicID      *uuid.UUID `json:"epicId"`
	Title       string     `json:"title" binding:"required,min=1,max=255" example:"Guest checkout"`
	Description string     `json:"description" binding:"max=5000"`
	Status      string     `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS IN_REVIEW DONE"`
	StoryPoints int        `json:"storyPoints" binding:"min=0,max=100"`
}

func (r *CreateStoryRequest) Validate() error {
	if r.ProjectID == uuid.Nil && r.EpicID == nil {
		return errors.New("projectId or epicId is required")
	}
	return nil
}

func (r *CreateStoryRequest) ToModel(uuid.UUID) *domain.Story {
	return &domain.Story{
		ProjectID:   r.ProjectID,
		EpicID:      r.EpicID,
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.StoryStatus(orDefault(r.Status, string(domain.StoryStatusTodo))),
		StoryPoints: r.StoryPoints,
	}
}

type UpdateStoryRequest struct {
	EpicID      *uuid.UUID `json:"epicId"`
	Title       *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
	Status      *string    `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS IN_REVIEW DONE"`
	StoryPoints *int       `json:"storyPoints" binding:"omitempty,min=0,max=100"`
}

func (r *UpdateStoryRequest) ApplyTo(s *domain.Story) {
	setUUID(&s.EpicID, r.EpicID)
	setString(&s.Title, r.Title)
	setString(&s.Description, r.Description)
	if r.Status != nil {
		s.Status = domain.StoryStatus(*r.Status)
	}
	if r.StoryPoints != nil {
		s.StoryPoints = *r.StoryPoints
	}
}

// CreateTaskRequest represents the request to create a task.
// @Description projectId may be omitted when storyId or epicId is given.
type CreateTaskRequest struct {
	ProjectID   uuid.UUID  `json:"projectId"`
	EpicID      *uuid.UUID `json:"epicId"`
	StoryID     *uuid.UUID `json:"storyId"`
	SprintID    *uuid.UUID `json:"sprintId"`
	AssigneeID  *uuid.UUID `json:"assigneeId"`
	Title       string     `json:"title" binding:"required,min=1,max=255" example:"Write payment adapter"`
	Description string     `json:"description" binding:"max=5000"`
	Status      string     `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS IN_REVIEW DONE BLOCKED"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

func (r *CreateTaskRequest) Validate() error {
	if r.ProjectID == uuid.Nil && r.StoryID == nil && r.EpicID == nil {
		return errors.New("projectId, epicId or storyId is required")
	}
	return nil
}

func (r *CreateTaskRequest) ToModel(uuid.UUID) *domain.Task {
	return &domain.Task{
		ProjectID:   r.ProjectID,
		EpicID:      r.EpicID,
		StoryID:     r.StoryID,
		SprintID:    r.SprintID,
		AssigneeID:  r.AssigneeID,
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.TaskStatus(orDefault(r.Status, string(domain.TaskStatusTodo))),
		Priority:    domain.Priority(orDefault(r.Priority, string(domain.PriorityMedium))),
		DueDate:     r.DueDate,
	}
}

type UpdateTaskRequest struct {
	StoryID     *uuid.UUID `json:"storyId"`
	EpicID      *uuid.UUID `json:"epicId"`
	SprintID    *uuid.UUID `json:"sprintId"`
	AssigneeID  *uuid.UUID `json:"assigneeId"`
	Title       *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
	Status      *string    `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS IN_REVIEW DONE BLOCKED"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

func (r *UpdateTaskRequest) ApplyTo(t *domain.Task) {
	setUUID(&t.StoryID, r.StoryID)
	setUUID(&t.EpicID, r.EpicID)
	setUUID(&t.SprintID, r.SprintID)
	setUUID(&t.AssigneeID, r.AssigneeID)
	setString(&t.Title, r.Title)
	setString(&t.Description, r.Description)
	if r.Status != nil {
		t.Status = domain.TaskStatus(*r.Status)
	}
	if r.Priority != nil {
		t.Priority = domain.Priority(*r.Priority)
	}
	if r.DueDate != nil {
		t.DueDate = r.DueDate
	}
}

// UpdateTaskStatusRequest moves a task through its lifecycle
type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=TODO IN_PROGRESS IN_REVIEW DONE BLOCKED" example:"DONE"`
}

func (r *UpdateTaskStatusRequest) ApplyTo(t *domain.Task) {
	t.Status = domain.TaskStatus(r.Status)
}

// CreateSprintRequest represents the request to create a sprint
type CreateSprintRequest struct {
	ProjectID uuid.UUID  `json:"projectId" binding:"required"`
	TeamID    *uuid.UUID `json:"teamId"`
	Name      string     `json:"name" binding:"required,min=1,max=255" example:"Sprint 12"`
	Goal      string     `json:"goal" binding:"max=2000"`
	Status    string     `json:"status" binding:"omitempty,oneof=PLANNED ACTIVE COMPLETED"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

func (r *CreateSprintRequest) Validate() error { return checkRange(r.StartDate, r.EndDate) }

func (r *CreateSprintRequest) ToModel(uuid.UUID) *domain.Sprint {
	return &domain.Sprint{
		ProjectID: r.ProjectID,
		TeamID:    r.TeamID,
		Name:      r.Name,
		Goal:      r.Goal,
		Status:    domain.SprintStatus(orDefault(r.Status, string(domain.SprintStatusPlanned))),
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}
}

type UpdateSprintRequest struct {
	TeamID    *uuid.UUID `json:"teamId"`
	Name      *string    `json:"name" binding:"omitempty,min=1,max=255"`
	Goal      *string    `json:"goal" binding:"omitempty,max=2000"`
	Status    *string    `json:"status" binding:"omitempty,oneof=PLANNED ACTIVE COMPLETED"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

func (r *UpdateSprintRequest) Validate() error { return checkRange(r.StartDate, r.EndDate) }

func (r *UpdateSprintRequest) ApplyTo(s *domain.Sprint) {
	setUUID(&s.TeamID, r.TeamID)
	setString(&s.Name, r.Name)
	setString(&s.Goal, r.Goal)
	if r.Status != nil {
		s.Status = domain.SprintStatus(*r.Status)
	}
	if r.StartDate != nil {
		s.StartDate = r.StartDate
	}
	if r.EndDate != nil {
		s.EndDate = r.EndDate
	}
}

// CreateBacklogItemRequest represents the request to add a backlog item
type CreateBacklogItemRequest struct {
	ProjectID uuid.UUID  `json:"projectId" binding:"required"`
	SprintID  *uuid.UUID `json:"sprintId"`
	StoryID   *uuid.UUID `json:"storyId"`
	Title     string     `json:"title" binding:"required,min=1,max=255"`
	Type      string     `json:"type" binding:"omitempty,oneof=STORY TASK BUG"`
	Priority  string     `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	Rank      int        `json:"rank" binding:"min=0"`
}

func (r *CreateBacklogItemRequest) ToModel(uuid.UUID) *domain.BacklogItem {
	return &domain.BacklogItem{
		ProjectID: r.ProjectID,
		SprintID:  r.SprintID,
		StoryID:   r.StoryID,
		Title:     r.Title,
		Type:      domain.BacklogItemType(orDefault(r.Type, string(domain.BacklogItemTypeTask))),
		Priority:  domain.Priority(orDefault(r.Priority, string(domain.PriorityMedium))),
		Rank:      r.Rank,
	}
}

type UpdateBacklogItemRequest struct {
	SprintID *uuid.UUID `json:"sprintId"`
	StoryID  *uuid.UUID `json:"storyId"`
	Title    *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Type     *string    `json:"type" binding:"omitempty,oneof=STORY TASK BUG"`
	Priority *string    `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	Rank     *int       `json:"rank" binding:"omitempty,min=0"`
}

func (r *UpdateBacklogItemRequest) ApplyTo(b *domain.BacklogItem) {
	setUUID(&b.SprintID, r.SprintID)
	setUUID(&b.StoryID, r.StoryID)
	setString(&b.Title, r.Title)
	if r.Type != nil {
		b.Type = domain.BacklogItemType(*r.Type)
	}
	if r.Priority != nil {
		b.Priority = domain.Priority(*r.Priority)
	}
	if r.Rank != nil {
		b.Rank = *r.Rank
	}
}
