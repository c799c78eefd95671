package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetracker/internal/model"
	"timetracker/internal/service"
	"timetracker/internal/testutil"
)

func TestTaskService_CreateRequiresDescription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, desc := range []string{"", "   "} {
		_, err := f.tasks.CreateTask(ctx, service.TaskInput{Description: desc})
		assert.ErrorIs(t, err, service.ErrValidation)
	}

	created, err := f.tasks.CreateTask(ctx, service.TaskInput{Description: "write report", Notes: testutil.Ptr("q3")})
	require.NoError(t, err)

	got, err := f.tasks.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "write report", got.Description)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "q3", *got.Notes)
	assert.Empty(t, got.Subtasks)
	assert.Empty(t, got.TimeEntries)
}

func TestTaskService_CreateUnderParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.tasks.CreateTask(ctx, service.TaskInput{Description: "A"})
	require.NoError(t, err)
	b, err := f.tasks.CreateTask(ctx, service.TaskInput{Description: "B", ParentTaskID: &a.ID})
	require.NoError(t, err)
	c, err := f.tasks.CreateTask(ctx, service.TaskInput{Description: "C", ParentTaskID: &b.ID})
	require.NoError(t, err)

	got, err := f.tasks.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got.Subtasks, 1)
	assert.Equal(t, b.ID, got.Subtasks[0].ID)
	require.Len(t, got.Subtasks[0].Subtasks, 1)
	assert.Equal(t, c.ID, got.Subtasks[0].Subtasks[0].ID)

	missing := uint(999)
	_, err = f.tasks.CreateTask(ctx, service.TaskInput{Description: "D", ParentTaskID: &missing})
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.EqualError(t, err, "No parent task with id of 999 found")
}

func TestTaskService_UpdateWithEmptyDescriptionLeavesTaskUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.CreateTask(ctx, service.TaskInput{Description: "A", Notes: testutil.Ptr("keep")})
	require.NoError(t, err)

	_, err = f.tasks.UpdateTask(ctx, task.ID, service.TaskInput{Description: ""})
	assert.ErrorIs(t, err, service.ErrValidation)

	got, err := f.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, *task, *got)

	_, err = f.tasks.UpdateTask(ctx, 404, service.TaskInput{Description: "x"})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestTaskService_UpdateOverwritesNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.CreateTask(ctx, service.TaskInput{Description: "A", Notes: testutil.Ptr("old")})
	require.NoError(t, err)

	updated, err := f.tasks.UpdateTask(ctx, task.ID, service.TaskInput{Description: "A2"})
	require.NoError(t, err)
	assert.Equal(t, "A2", updated.Description)
	assert.Nil(t, updated.Notes)
}

func TestTaskService_DeleteRemovesTaskAndEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.CreateTask(ctx, service.TaskInput{Description: "A"})
	require.NoError(t, err)
	entry, err := f.entries.StartForTask(ctx, task.ID)
	require.NoError(t, err)

	require.NoError(t, f.tasks.DeleteTask(ctx, task.ID))

	all, err := f.tasks.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = f.entries.Get(ctx, entry.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = f.tasks.DeleteTask(ctx, task.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestTaskService_RunningAndStoppedLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	idle, err := f.tasks.CreateTask(ctx, service.TaskInput{Description: "idle"})
	require.NoError(t, err)
	both, err := f.tasks.CreateTask(ctx, service.TaskInput{Description: "both"})
	require.NoError(t, err)

	_, err = f.entries.StartForTask(ctx, both.ID)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.entries.StopForTask(ctx, both.ID)
	require.NoError(t, err)
	_, err = f.entries.StartForTask(ctx, both.ID)
	require.NoError(t, err)

	running, err := f.tasks.ListRunning(ctx)
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, both.ID, running[0].ID)
	assert.Len(t, running[0].TimeEntries, 2)

	stopped, err := f.tasks.ListStopped(ctx)
	require.NoError(t, err)
	require.Len(t, stopped, 1)
	assert.Equal(t, both.ID, stopped[0].ID)

	all, err := f.tasks.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{idle.ID, both.ID}, ids(all))
}

func TestTaskService_LinkSubtaskRejectsCycles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.tasks.CreateTask(ctx, service.TaskInput{Description: "A"})
	require.NoError(t, err)
	b, err := f.tasks.CreateTask(ctx, service.TaskInput{Description: "B", ParentTaskID: &a.ID})
	require.NoError(t, err)
	c, err := f.tasks.CreateTask(ctx, service.TaskInput{Description: "C"})
	require.NoError(t, err)

	_, err = f.tasks.LinkSubtask(ctx, b.ID, a.ID)
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = f.tasks.LinkSubtask(ctx, a.ID, a.ID)
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.tasks.LinkSubtask(ctx, a.ID, 77)
	assert.ErrorIs(t, err, service.ErrNotFound)

	// A task may have several parents.
	_, err = f.tasks.LinkSubtask(ctx, c.ID, b.ID)
	require.NoError(t, err)
	parent, err := f.tasks.LinkSubtask(ctx, a.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID, c.ID}, ids(parent.Subtasks))
	assert.Equal(t, []uint{b.ID}, ids(parent.Subtasks[1].Subtasks))

	parent, err = f.tasks.UnlinkSubtask(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{c.ID}, ids(parent.Subtasks))

	_, err = f.tasks.UnlinkSubtask(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func ids(views []model.TaskView) []uint {
	out := make([]uint, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}
