package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"project-tracker-api/internal/domain"
)

// TaskCounts are the raw numbers behind a progress figure
type TaskCounts struct {
	Total int64
	Done  int64
}

// HierarchyRepository answers roll-up questions about the task tree
type HierarchyRepository interface {
	// CountTasks groups live tasks by parent column (project_id, epic_id or story_id).
	// Parents without tasks are absent from the result.
	CountTasks(ctx context.Context, parentColumn string, parentIDs []uuid.UUID) (map[uuid.UUID]TaskCounts, error)
	CountTasksByStatus(ctx context.Context) (map[domain.TaskStatus]int64, error)
}

type hierarchyRepositoryImpl struct {
	db *gorm.DB
}

// NewHierarchyRepository creates a new instance of HierarchyRepository
func NewHierarchyRepository(db *gorm.DB) HierarchyRepository {
	return &hierarchyRepositoryImpl{db: db}
}

var parentColumns = map[string]bool{
	"project_id": true,
	"epic_id":    true,
	"story_id":   true,
}

type taskCountRow struct {
	ParentID uuid.UUID
	Total    int64
	Done     int64
}

func (r *hierarchyRepositoryImpl) CountTasks(ctx context.Context, parentColumn string, parentIDs []uuid.UUID) (map[uuid.UUID]TaskCounts, error) {
	if !parentColumns[parentColumn] {
		return nil, fmt.Errorf("unsupported parent column %q", parentColumn)
	}
	out := make(map[uuid.UUID]TaskCounts, len(parentIDs))
	if len(parentIDs) == 0 {
		return out, nil
	}

	var rows []taskCountRow
	err := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Select(parentColumn+" AS parent_id, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS done", domain.TaskStatusDone).
		Where(parentColumn+" IN ?", parentIDs).
		Group(parentColumn).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.ParentID] = TaskCounts{Total: row.Total, Done: row.Done}
	}
	return out, nil
}

type statusCountRow struct {
	Status domain.TaskStatus
	Count  int64
}

func (r *hierarchyRepositoryImpl) CountTasksByStatus(ctx context.Context) (map[domain.TaskStatus]int64, error) {
	var rows []statusCountRow
	if err := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[domain.TaskStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
