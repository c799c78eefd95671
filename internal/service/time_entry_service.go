package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"timetracker/internal/model"
	"timetracker/internal/repository"
)

// TimeEntryService starts, stops and edits time entries.
type TimeEntryService struct {
	entryRepo *repository.TimeEntryRepository
	tasks     *TaskService
	now       func() time.Time
}

func NewTimeEntryService(entryRepo *repository.TimeEntryRepository, tasks *TaskService) *TimeEntryService {
	return &TimeEntryService{
		entryRepo: entryRepo,
		tasks:     tasks,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source used for start and stop timestamps.
func (s *TimeEntryService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *TimeEntryService) ListForTask(ctx context.Context, taskID uint) ([]model.TimeEntry, error) {
	if _, err := s.tasks.find(ctx, taskID); err != nil {
		return nil, err
	}
	entries, err := s.entryRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("list time entries: %w", err)
	}
	return nonNil(entries), nil
}

// StartForTask opens a new entry for the task. At most one entry per task
// may be running.
func (s *TimeEntryService) StartForTask(ctx context.Context, taskID uint) (*model.TimeEntry, error) {
	if _, err := s.tasks.find(ctx, taskID); err != nil {
		return nil, err
	}
	entry, err := s.entryRepo.StartForTask(ctx, taskID, s.now())
	if errors.Is(err, repository.ErrEntryRunning) {
		return nil, conflictf("Task %d already started", taskID)
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// StopForTask closes the running entry of the task.
func (s *TimeEntryService) StopForTask(ctx context.Context, taskID uint) (*model.TimeEntry, error) {
	if _, err := s.tasks.find(ctx, taskID); err != nil {
		return nil, err
	}
	entry, err := s.entryRepo.FindOpenByTask(ctx, taskID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, conflictf("Task %d is not started", taskID)
	case err != nil:
		return nil, fmt.Errorf("find open entry: %w", err)
	}

	end := s.now()
	entry.End = &end
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *TimeEntryService) Get(ctx context.Context, id uint) (*model.TimeEntry, error) {
	return s.find(ctx, id)
}

func (s *TimeEntryService) Delete(ctx context.Context, id uint) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.entryRepo.Delete(ctx, id)
}

// OwningTask returns the task the entry was recorded against.
func (s *TimeEntryService) OwningTask(ctx context.Context, id uint) (*model.TaskView, error) {
	entry, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.tasks.Get(ctx, entry.TaskID)
}

// ListRunning returns open entries, only those of taskID when it is set.
func (s *TimeEntryService) ListRunning(ctx context.Context, taskID *uint) ([]model.TimeEntry, error) {
	return s.listByState(ctx, true, taskID)
}

// ListStopped returns closed entries, only those of taskID when it is set.
func (s *TimeEntryService) ListStopped(ctx context.Context, taskID *uint) ([]model.TimeEntry, error) {
	return s.listByState(ctx, false, taskID)
}

func (s *TimeEntryService) listByState(ctx context.Context, running bool, taskID *uint) ([]model.TimeEntry, error) {
	entries, err := s.entryRepo.ListByState(ctx, running, taskID)
	if err != nil {
		return nil, fmt.Errorf("list time entries by state: %w", err)
	}
	return nonNil(entries), nil
}

// Stop sets the end of the entry to now, even if it was already stopped.
func (s *TimeEntryService) Stop(ctx context.Context, id uint) (*model.TimeEntry, error) {
	entry, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	end := s.now()
	entry.End = &end
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// SetStart overwrites the start from a Unix timestamp. The end is not checked.
func (s *TimeEntryService) SetStart(ctx context.Context, id uint, unix int64) (*model.TimeEntry, error) {
	entry, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	start, err := fromUnix(unix)
	if err != nil {
		return nil, err
	}
	entry.Start = start
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// SetEnd overwrites the end from a Unix timestamp. The start is not checked.
func (s *TimeEntryService) SetEnd(ctx context.Context, id uint, unix int64) (*model.TimeEntry, error) {
	entry, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	end, err := fromUnix(unix)
	if err != nil {
		return nil, err
	}
	entry.End = &end
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// fromUnix converts seconds since the epoch to a UTC time whose year fits
// both the database text format and RFC 3339.
func fromUnix(unix int64) (time.Time, error) {
	t := time.Unix(unix, 0).UTC()
	if t.Year() < 0 || t.Year() > 9999 {
		return time.Time{}, validationf("invalid timestamp %d", unix)
	}
	return t, nil
}

func (s *TimeEntryService) find(ctx context.Context, id uint) (*model.TimeEntry, error) {
	entry, err := s.entryRepo.FindByID(ctx, id)
	switch {
	case err == nil:
		return entry, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, notFoundf("Time entry %d not found", id)
	default:
		return nil, fmt.Errorf("find time entry: %w", err)
	}
}

func nonNil(entries []model.TimeEntry) []model.TimeEntry {
	if entries == nil {
		return []model.TimeEntry{}
	}
	return entries
}
