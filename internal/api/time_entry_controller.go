package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"timetracker/internal/model"
	"timetracker/internal/service"
)

// TimeEntryController handles HTTP requests for time entries.
type TimeEntryController struct {
	Service *service.TimeEntryService
}

// NewTimeEntryController creates a new TimeEntryController.
func NewTimeEntryController(entries *service.TimeEntryService) *TimeEntryController {
	return &TimeEntryController{Service: entries}
}

// Get handles GET /timeentry/{id}.
func (c *TimeEntryController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	entry, err := c.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Delete handles DELETE /timeentry/{id}.
func (c *TimeEntryController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Message: fmt.Sprintf("Time Entry %d removed successfully", id), Success: true})
}

// Task handles GET /timeentry/{id}/task.
func (c *TimeEntryController) Task(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	task, err := c.Service.OwningTask(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// ListRunning handles GET /timeentry/running and /timeentry/running/{task_id}.
func (c *TimeEntryController) ListRunning(w http.ResponseWriter, r *http.Request) {
	c.listByState(w, r, c.Service.ListRunning)
}

// ListStopped handles GET /timeentry/stopped and /timeentry/stopped/{task_id}.
func (c *TimeEntryController) ListStopped(w http.ResponseWriter, r *http.Request) {
	c.listByState(w, r, c.Service.ListStopped)
}

func (c *TimeEntryController) listByState(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, taskID *uint) ([]model.TimeEntry, error)) {
	var taskID *uint
	if _, ok := mux.Vars(r)["task_id"]; ok {
		id, ok := pathID(w, r, "task_id")
		if !ok {
			return
		}
		taskID = &id
	}
	entries, err := list(r.Context(), taskID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Stop handles POST /timeentry/{id}/stop.
func (c *TimeEntryController) Stop(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	entry, err := c.Service.Stop(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// SetStart handles PATCH /timeentry/{id}/start/{timestamp}.
func (c *TimeEntryController) SetStart(w http.ResponseWriter, r *http.Request) {
	c.setBound(w, r, c.Service.SetStart)
}

// SetEnd handles PATCH /timeentry/{id}/end/{timestamp}.
func (c *TimeEntryController) SetEnd(w http.ResponseWriter, r *http.Request) {
	c.setBound(w, r, c.Service.SetEnd)
}

func (c *TimeEntryController) setBound(w http.ResponseWriter, r *http.Request, set func(ctx context.Context, id uint, unix int64) (*model.TimeEntry, error)) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ts, err := strconv.ParseInt(mux.Vars(r)["timestamp"], 10, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid timestamp "+mux.Vars(r)["timestamp"])
		return
	}
	entry, err := set(r.Context(), id, ts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
