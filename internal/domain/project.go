package domain

import (
	"time"

	"github.com/google/uuid"
)

// Aggregates are derived from the tasks table on read and never stored
type Aggregates struct {
	TaskCount     int64 `gorm:"-" json:"taskCount"`
	DoneTaskCount int64 `gorm:"-" json:"doneTaskCount"`
	Progress      int   `gorm:"-" json:"progress"`
}

// SetCounts fills the aggregate fields from raw counts
func (a *Aggregates) SetCounts(total, done int64) {
	a.TaskCount = total
	a.DoneTaskCount = done
	a.Progress = Progress(done, total)
}

// Project is the root of the work hierarchy
type Project struct {
	BaseModel
	Aggregates
	CompanyID   *uuid.UUID    `gorm:"type:uuid;index:idx_projects_company_id" json:"companyId"`
	TeamID      *uuid.UUID    `gorm:"type:uuid;index:idx_projects_team_id" json:"teamId"`
	OwnerID     *uuid.UUID    `gorm:"type:uuid;index:idx_projects_owner_id" json:"ownerId"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:'PLANNING';index:idx_projects_status" json:"status"`
	Priority    Priority      `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
	StartDate   *time.Time    `gorm:"type:timestamp" json:"startDate,omitempty"`
	DueDate     *time.Time    `gorm:"type:timestamp" json:"dueDate,omitempty"`
}

func (Project) TableName() string { return "projects" }

// Epic groups stories inside a project
type Epic struct {
	BaseModel
	Aggregates
	ProjectID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_epics_project_id" json:"projectId"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      EpicStatus `gorm:"type:varchar(20);not null;default:'TODO'" json:"status"`
	Priority    Priority   `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
}

func (Epic) TableName() string { return "epics" }

// Story is a user-facing slice of an epic
type Story struct {
	BaseModel
	Aggregates
	ProjectID   uuid.UUID   `gorm:"type:uuid;not null;index:idx_stories_project_id" json:"projectId"`
	EpicID      *uuid.UUID  `gorm:"type:uuid;index:idx_stories_epic_id" json:"epicId"`
	Title       string      `gorm:"type:varchar(255);not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	Status      StoryStatus `gorm:"type:varchar(20);not null;default:'TODO'" json:"status"`
	StoryPoints int         `gorm:"not null;default:0" json:"storyPoints"`
}

func (Story) TableName() string { return "stories" }

// Task is the unit of work. Ancestor ids are denormalised from its story and epic.
type Task struct {
	BaseModel
	ProjectID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_tasks_project_id" json:"projectId"`
	EpicID      *uuid.UUID `gorm:"type:uuid;index:idx_tasks_epic_id" json:"epicId"`
	StoryID     *uuid.UUID `gorm:"type:uuid;index:idx_tasks_story_id" json:"storyId"`
	SprintID    *uuid.UUID `gorm:"type:uuid;index:idx_tasks_sprint_id" json:"sprintId"`
	AssigneeID  *uuid.UUID `gorm:"type:uuid;index:idx_tasks_assignee_id" json:"assigneeId"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'TODO';index:idx_tasks_status" json:"status"`
	Priority    Priority   `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
	DueDate     *time.Time `gorm:"type:timestamp" json:"dueDate,omitempty"`
}

func (Task) TableName() string { return "tasks" }

// Sprint is a time box inside a project
type Sprint struct {
	BaseModel
	ProjectID uuid.UUID    `gorm:"type:uuid;not null;index:idx_sprints_project_id" json:"projectId"`
	TeamID    *uuid.UUID   `gorm:"type:uuid" json:"teamId"`
	Name      string       `gorm:"type:varchar(255);not null" json:"name"`
	Goal      string       `gorm:"type:text" json:"goal"`
	Status    SprintStatus `gorm:"type:varchar(20);not null;default:'PLANNED'" json:"status"`
	StartDate *time.Time   `gorm:"type:timestamp" json:"startDate,omitempty"`
	EndDate   *time.Time   `gorm:"type:timestamp" json:"endDate,omitempty"`
}

func (Sprint) TableName() string { return "sprints" }

// BacklogItem is a ranked entry in a project backlog, optionally planned into a sprint
type BacklogItem struct {
	BaseModel
	ProjectID uuid.UUID       `gorm:"type:uuid;not null;index:idx_backlog_items_project_id" json:"projectId"`
	SprintID  *uuid.UUID      `gorm:"type:uuid;index:idx_backlog_items_sprint_id" json:"sprintId"`
	StoryID   *uuid.UUID      `gorm:"type:uuid" json:"storyId"`
	Title     string          `gorm:"type:varchar(255);not null" json:"title"`
	Type      BacklogItemType `gorm:"type:varchar(20);not null;default:'TASK'" json:"type"`
	Priority  Priority        `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
	Rank      int             `gorm:"not null;default:0;index:idx_backlog_items_rank" json:"rank"`
}

func (BacklogItem) TableName() string { return "backlog_items" }
