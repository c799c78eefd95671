package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"timetracker/internal/model"
)

// ErrEntryRunning is returned when a task already has an open time entry.
var ErrEntryRunning = errors.New("time entry already running")

// TimeEntryRepository handles CRUD for time entries.
type TimeEntryRepository struct {
	db *gorm.DB
}

func NewTimeEntryRepository(db *gorm.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

// StartForTask opens a new entry for the task unless one is already open.
// The check and the insert share a transaction.
func (r *TimeEntryRepository) StartForTask(ctx context.Context, taskID uint, start time.Time) (*model.TimeEntry, error) {
	entry := model.TimeEntry{TaskID: taskID, Start: start.UTC()}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&model.TimeEntry{}).
			Where("task_id = ? AND ended_at IS NULL", taskID).
			Count(&open).Error; err != nil {
			return fmt.Errorf("count open entries: %w", err)
		}
		if open > 0 {
			return ErrEntryRunning
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("create time entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *TimeEntryRepository) FindByID(ctx context.Context, id uint) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindOpenByTask returns the most recently started open entry of the task.
func (r *TimeEntryRepository) FindOpenByTask(ctx context.Context, taskID uint) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	if err := r.db.WithContext(ctx).Where("task_id = ? AND ended_at IS NULL", taskID).
		Order("started_at DESC, id DESC").
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *TimeEntryRepository) ListByTask(ctx context.Context, taskID uint) ([]model.TimeEntry, error) {
	return r.ListByTasks(ctx, []uint{taskID})
}

func (r *TimeEntryRepository) ListByTasks(ctx context.Context, taskIDs []uint) ([]model.TimeEntry, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}
	var entries []model.TimeEntry
	if err := r.db.WithContext(ctx).Where("task_id IN ?", taskIDs).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByState returns running or stopped entries, narrowed to one task when
// taskID is set.
func (r *TimeEntryRepository) ListByState(ctx context.Context, running bool, taskID *uint) ([]model.TimeEntry, error) {
	q := r.db.WithContext(ctx).Where(endedClause(running))
	if taskID != nil {
		q = q.Where("task_id = ?", *taskID)
	}
	var entries []model.TimeEntry
	if err := q.Order("id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListEndedSince returns entries stopped at or after since. Stored times are
// UTC text, so the bound is converted before comparing.
func (r *TimeEntryRepository) ListEndedSince(ctx context.Context, since time.Time) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	if err := r.db.WithContext(ctx).Where("ended_at >= ?", since.UTC()).Order("ended_at ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *TimeEntryRepository) Save(ctx context.Context, entry *model.TimeEntry) error {
	if err := r.db.WithContext(ctx).Save(entry).Error; err != nil {
		return fmt.Errorf("save time entry: %w", err)
	}
	return nil
}

func (r *TimeEntryRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.TimeEntry{}, id).Error; err != nil {
		return fmt.Errorf("delete time entry: %w", err)
	}
	return nil
}
