package api

import (
	"context"
	"fmt"
	"net/http"

	"timetracker/internal/model"
	"timetracker/internal/service"
)

// TaskController handles HTTP requests for tasks.
type TaskController struct {
	Service *service.TaskService
	Entries *service.TimeEntryService
}

// NewTaskController creates a new TaskController.
func NewTaskController(tasks *service.TaskService, entries *service.TimeEntryService) *TaskController {
	return &TaskController{Service: tasks, Entries: entries}
}

type taskRequest struct {
	Description  *string `json:"description"`
	Notes        *string `json:"notes"`
	ParentTaskID *uint   `json:"parent_task_id"`
}

func (req taskRequest) input() service.TaskInput {
	in := service.TaskInput{Notes: req.Notes, ParentTaskID: req.ParentTaskID}
	if req.Description != nil {
		in.Description = *req.Description
	}
	return in
}

// ListAll handles GET /task/all.
func (c *TaskController) ListAll(w http.ResponseWriter, r *http.Request) {
	tasks, err := c.Service.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Get handles GET /task/{id}.
func (c *TaskController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	task, err := c.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Create handles POST /task.
func (c *TaskController) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	task, err := c.Service.CreateTask(r.Context(), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Update handles PATCH /task/{id}.
func (c *TaskController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req taskRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	in := req.input()
	in.ParentTaskID = nil
	task, err := c.Service.UpdateTask(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /task/{id}.
func (c *TaskController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Service.DeleteTask(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Message: fmt.Sprintf("Task %d deleted", id), Success: true})
}

// ListRunning handles GET /task/running.
func (c *TaskController) ListRunning(w http.ResponseWriter, r *http.Request) {
	tasks, err := c.Service.ListRunning(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// ListStopped handles GET /task/stopped.
func (c *TaskController) ListStopped(w http.ResponseWriter, r *http.Request) {
	tasks, err := c.Service.ListStopped(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// TimeEntries handles GET /task/{id}/timeentries.
func (c *TaskController) TimeEntries(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	entries, err := c.Entries.ListForTask(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Start handles POST /task/{id}/start.
func (c *TaskController) Start(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	entry, err := c.Entries.StartForTask(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Stop handles POST /task/{id}/stop.
func (c *TaskController) Stop(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	entry, err := c.Entries.StopForTask(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// LinkSubtask handles PUT /task/{id}/subtasks/{subtask_id}.
func (c *TaskController) LinkSubtask(w http.ResponseWriter, r *http.Request) {
	c.subtaskEdge(w, r, c.Service.LinkSubtask)
}

// UnlinkSubtask handles DELETE /task/{id}/subtasks/{subtask_id}.
func (c *TaskController) UnlinkSubtask(w http.ResponseWriter, r *http.Request) {
	c.subtaskEdge(w, r, c.Service.UnlinkSubtask)
}

func (c *TaskController) subtaskEdge(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, parentID, subtaskID uint) (*model.TaskView, error)) {
	parentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	subtaskID, ok := pathID(w, r, "subtask_id")
	if !ok {
		return
	}
	task, err := op(r.Context(), parentID, subtaskID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
