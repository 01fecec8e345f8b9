package domain

// Priority is shared by projects, epics, tasks and backlog items
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

type UserRole string

const (
	UserRoleAdmin   UserRole = "ADMIN"
	UserRoleManager UserRole = "MANAGER"
	UserRoleMember  UserRole = "MEMBER"
)

type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "PLANNING"
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusOnHold    ProjectStatus = "ON_HOLD"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusCancelled ProjectStatus = "CANCELLED"
)

type EpicStatus string

const (
	EpicStatusTodo       EpicStatus = "TODO"
	EpicStatusInProgress EpicStatus = "IN_PROGRESS"
	EpicStatusDone       EpicStatus = "DONE"
)

type StoryStatus string

const (
	StoryStatusTodo       StoryStatus = "TODO"
	StoryStatusInProgress StoryStatus = "IN_PROGRESS"
	StoryStatusInReview   StoryStatus = "IN_REVIEW"
	StoryStatusDone       StoryStatus = "DONE"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusInReview   TaskStatus = "IN_REVIEW"
	TaskStatusDone       TaskStatus = "DONE"
	TaskStatusBlocked    TaskStatus = "BLOCKED"
)

type SprintStatus string

const (
	SprintStatusPlanned   SprintStatus = "PLANNED"
	SprintStatusActive    SprintStatus = "ACTIVE"
	SprintStatusCompleted SprintStatus = "COMPLETED"
)

type BacklogItemType string

const (
	BacklogItemTypeStory BacklogItemType = "STORY"
	BacklogItemTypeTask  BacklogItemType = "TASK"
	BacklogItemTypeBug   BacklogItemType = "BUG"
)

type DeviceType string

const (
	DeviceTypeLaptop  DeviceType = "LAPTOP"
	DeviceTypeDesktop DeviceType = "DESKTOP"
	DeviceTypePhone   DeviceType = "PHONE"
	DeviceTypeTablet  DeviceType = "TABLET"
	DeviceTypeOther   DeviceType = "OTHER"
)

type DeviceStatus string

const (
	DeviceStatusAvailable   DeviceStatus = "AVAILABLE"
	DeviceStatusAssigned    DeviceStatus = "ASSIGNED"
	DeviceStatusMaintenance DeviceStatus = "MAINTENANCE"
	DeviceStatusRetired     DeviceStatus = "RETIRED"
)

// Progress returns the integer completion percentage for done out of total
func Progress(done, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(done * 100 / total)
}
