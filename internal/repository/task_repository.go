package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"timetracker/internal/model"
)

// TaskRepository handles CRUD for tasks and the subtask graph.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts the task and, when parentID is set, links it under that
// parent in the same transaction. A missing parent yields gorm.ErrRecordNotFound.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task, parentID *uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if parentID != nil {
			var parent model.Task
			if err := tx.First(&parent, *parentID).Error; err != nil {
				return fmt.Errorf("find parent task: %w", err)
			}
		}
		if err := tx.Create(task).Error; err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		if parentID != nil {
			link := model.SubtaskLink{ParentTaskID: *parentID, SubtaskID: task.ID}
			if err := tx.Create(&link).Error; err != nil {
				return fmt.Errorf("link subtask: %w", err)
			}
		}
		return nil
	})
}

func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) ListAll(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) ListByIDs(ctx context.Context, ids []uint) ([]model.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByEntryState returns tasks owning at least one running (or stopped)
// time entry.
func (r *TaskRepository) ListByEntryState(ctx context.Context, running bool) ([]model.Task, error) {
	db := r.db.WithContext(ctx)
	owners := db.Model(&model.TimeEntry{}).Select("task_id").Where(endedClause(running))

	var tasks []model.Task
	if err := db.Where("id IN (?)", owners).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update overwrites description and notes; a nil Notes clears the column.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	err := r.db.WithContext(ctx).Model(task).
		Select("description", "notes").
		Updates(map[string]interface{}{
			"description": task.Description,
			"notes":       task.Notes,
		}).Error
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// Delete removes the task, its time entries and every subtask edge that
// names it. Former children stay as standalone tasks.
func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&model.TimeEntry{}).Error; err != nil {
			return fmt.Errorf("delete time entries: %w", err)
		}
		if err := tx.Where("parent_task_id = ? OR subtask_id = ?", id, id).Delete(&model.SubtaskLink{}).Error; err != nil {
			return fmt.Errorf("delete subtask links: %w", err)
		}
		if err := tx.Delete(&model.Task{}, id).Error; err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
}

// Links returns the outgoing subtask edges of the given parents, ordered
// by parent then subtask id.
func (r *TaskRepository) Links(ctx context.Context, parentIDs []uint) ([]model.SubtaskLink, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var links []model.SubtaskLink
	if err := r.db.WithContext(ctx).Where("parent_task_id IN ?", parentIDs).
		Order("parent_task_id ASC, subtask_id ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// Link adds a parent -> subtask edge. Existing edges are left untouched.
func (r *TaskRepository) Link(ctx context.Context, parentID, subtaskID uint) error {
	link := model.SubtaskLink{ParentTaskID: parentID, SubtaskID: subtaskID}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
		return fmt.Errorf("link subtask: %w", err)
	}
	return nil
}

// Unlink removes a parent -> subtask edge and reports whether it existed.
func (r *TaskRepository) Unlink(ctx context.Context, parentID, subtaskID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("parent_task_id = ? AND subtask_id = ?", parentID, subtaskID).
		Delete(&model.SubtaskLink{})
	if res.Error != nil {
		return false, fmt.Errorf("unlink subtask: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Reaches reports whether target is from itself or one of its descendants.
func (r *TaskRepository) Reaches(ctx context.Context, from, target uint) (bool, error) {
	seen := map[uint]bool{from: true}
	frontier := []uint{from}
	for len(frontier) > 0 {
		if seen[target] {
			return true, nil
		}
		links, err := r.Links(ctx, frontier)
		if err != nil {
			return false, err
		}
		frontier = frontier[:0]
		for _, link := range links {
			if seen[link.SubtaskID] {
				continue
			}
			seen[link.SubtaskID] = true
			frontier = append(frontier, link.SubtaskID)
		}
	}
	return seen[target], nil
}

func endedClause(running bool) string {
	if running {
		return "ended_at IS NULL"
	}
	return "ended_at IS NOT NULL"
}
