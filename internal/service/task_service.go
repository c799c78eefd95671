package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"timetracker/internal/model"
	"timetracker/internal/repository"
)

// TaskInput represents data required to create or update a task.
type TaskInput struct {
	Description  string
	Notes        *string
	ParentTaskID *uint
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo  *repository.TaskRepository
	entryRepo *repository.TimeEntryRepository
}

func NewTaskService(taskRepo *repository.TaskRepository, entryRepo *repository.TimeEntryRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, entryRepo: entryRepo}
}

func (s *TaskService) ListAll(ctx context.Context) ([]model.TaskView, error) {
	tasks, err := s.taskRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return s.render(ctx, tasks)
}

func (s *TaskService) Get(ctx context.Context, id uint) (*model.TaskView, error) {
	task, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.renderOne(ctx, *task)
}

// CreateTask stores a new task, registering it as a subtask of
// input.ParentTaskID when one is given.
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*model.TaskView, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, validationf("Description required for all new Task objects")
	}

	task := model.Task{
		Description: input.Description,
		Notes:       input.Notes,
	}
	if err := s.taskRepo.Create(ctx, &task, input.ParentTaskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) && input.ParentTaskID != nil {
			return nil, validationf("No parent task with id of %d found", *input.ParentTaskID)
		}
		return nil, err
	}

	return s.renderOne(ctx, task)
}

// UpdateTask overwrites description and notes. Omitted notes are cleared.
func (s *TaskService) UpdateTask(ctx context.Context, id uint, input TaskInput) (*model.TaskView, error) {
	task, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, validationf("Description required for all Task objects")
	}

	task.Description = input.Description
	task.Notes = input.Notes
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return s.renderOne(ctx, *task)
}

// DeleteTask removes a task together with its time entries.
func (s *TaskService) DeleteTask(ctx context.Context, id uint) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.taskRepo.Delete(ctx, id)
}

// ListRunning returns tasks with at least one open time entry.
func (s *TaskService) ListRunning(ctx context.Context) ([]model.TaskView, error) {
	return s.listByEntryState(ctx, true)
}

// ListStopped returns tasks with at least one closed time entry. A task can
// be both running and stopped.
func (s *TaskService) ListStopped(ctx context.Context) ([]model.TaskView, error) {
	return s.listByEntryState(ctx, false)
}

func (s *TaskService) listByEntryState(ctx context.Context, running bool) ([]model.TaskView, error) {
	tasks, err := s.taskRepo.ListByEntryState(ctx, running)
	if err != nil {
		return nil, fmt.Errorf("list tasks by entry state: %w", err)
	}
	return s.render(ctx, tasks)
}

// LinkSubtask places an existing task under another one. Links that would
// close a cycle are rejected.
func (s *TaskService) LinkSubtask(ctx context.Context, parentID, subtaskID uint) (*model.TaskView, error) {
	parent, err := s.find(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.find(ctx, subtaskID); err != nil {
		return nil, err
	}
	if parentID == subtaskID {
		return nil, validationf("Task %d cannot be a subtask of itself", parentID)
	}

	cycle, err := s.taskRepo.Reaches(ctx, subtaskID, parentID)
	if err != nil {
		return nil, fmt.Errorf("check subtask cycle: %w", err)
	}
	if cycle {
		return nil, conflictf("Task %d is an ancestor of task %d", subtaskID, parentID)
	}

	if err := s.taskRepo.Link(ctx, parentID, subtaskID); err != nil {
		return nil, err
	}
	return s.renderOne(ctx, *parent)
}

func (s *TaskService) UnlinkSubtask(ctx context.Context, parentID, subtaskID uint) (*model.TaskView, error) {
	parent, err := s.find(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.find(ctx, subtaskID); err != nil {
		return nil, err
	}

	removed, err := s.taskRepo.Unlink(ctx, parentID, subtaskID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, notFoundf("Task %d is not a subtask of task %d", subtaskID, parentID)
	}
	return s.renderOne(ctx, *parent)
}

func (s *TaskService) find(ctx context.Context, id uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	switch {
	case err == nil:
		return task, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, notFoundf("Task %d not found", id)
	default:
		return nil, fmt.Errorf("find task: %w", err)
	}
}

func (s *TaskService) renderOne(ctx context.Context, task model.Task) (*model.TaskView, error) {
	views, err := s.render(ctx, []model.Task{task})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *TaskService) render(ctx context.Context, roots []model.Task) ([]model.TaskView, error) {
	g, err := loadGraph(ctx, s.taskRepo, s.entryRepo, roots)
	if err != nil {
		return nil, err
	}
	views := make([]model.TaskView, 0, len(roots))
	for _, t := range roots {
		views = append(views, g.view(t.ID, map[uint]bool{}))
	}
	return views, nil
}
