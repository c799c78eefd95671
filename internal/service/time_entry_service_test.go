package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetracker/internal/service"
)

func TestTimeEntryService_StartStopCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.CreateTask(ctx, service.TaskInput{Description: "A"})
	require.NoError(t, err)

	_, err = f.entries.StopForTask(ctx, task.ID)
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.EqualError(t, err, "Task 1 is not started")

	started, err := f.entries.StartForTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, started.End)
	assert.True(t, started.Start.Equal(f.clock.Now()))

	running, err := f.entries.ListRunning(ctx, &task.ID)
	require.NoError(t, err)
	assert.Len(t, running, 1)

	_, err = f.entries.StartForTask(ctx, task.ID)
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.EqualError(t, err, "Task 1 already started")

	f.clock.Advance(90 * time.Minute)
	stopped, err := f.entries.StopForTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, started.ID, stopped.ID)
	require.NotNil(t, stopped.End)
	assert.False(t, stopped.End.Before(stopped.Start))

	_, err = f.entries.StopForTask(ctx, task.ID)
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestTimeEntryService_StopForTaskPicksOpenEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.CreateTask(ctx, service.TaskInput{Description: "A"})
	require.NoError(t, err)

	first, err := f.entries.StartForTask(ctx, task.ID)
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	_, err = f.entries.StopForTask(ctx, task.ID)
	require.NoError(t, err)

	second, err := f.entries.StartForTask(ctx, task.ID)
	require.NoError(t, err)

	// A closed entry that starts later than the open one is never picked.
	_, err = f.entries.SetStart(ctx, first.ID, f.clock.Now().Add(time.Hour).Unix())
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	stopped, err := f.entries.StopForTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, stopped.ID)
}

func TestTimeEntryService_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.entries.ListForTask(ctx, 5)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = f.entries.StartForTask(ctx, 5)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = f.entries.StopForTask(ctx, 5)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = f.entries.Get(ctx, 5)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, f.entries.Delete(ctx, 5), service.ErrNotFound)
	_, err = f.entries.OwningTask(ctx, 5)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = f.entries.Stop(ctx, 5)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = f.entries.SetStart(ctx, 5, 0)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = f.entries.SetEnd(ctx, 5, 0)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestTimeEntryService_EditBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.CreateTask(ctx, service.TaskInput{Description: "A"})
	require.NoError(t, err)
	entry, err := f.entries.StartForTask(ctx, task.ID)
	require.NoError(t, err)

	// End before start is accepted.
	updated, err := f.entries.SetEnd(ctx, entry.ID, 1_000)
	require.NoError(t, err)
	require.NotNil(t, updated.End)
	assert.Equal(t, int64(1_000), updated.End.Unix())

	updated, err = f.entries.SetStart(ctx, entry.ID, 2_000)
	require.NoError(t, err)
	assert.Equal(t, int64(2_000), updated.Start.Unix())

	got, err := f.entries.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2_000), got.Start.Unix())
	assert.Equal(t, int64(1_000), got.End.Unix())

	// Stop overwrites an existing end.
	f.clock.Advance(time.Hour)
	stopped, err := f.entries.Stop(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, stopped.End.Equal(f.clock.Now()))
}

func TestTimeEntryService_EditRejectsYearsPastRFC3339(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.CreateTask(ctx, service.TaskInput{Description: "A"})
	require.NoError(t, err)
	entry, err := f.entries.StartForTask(ctx, task.ID)
	require.NoError(t, err)

	_, err = f.entries.SetStart(ctx, entry.ID, 999_999_999_999)
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.EqualError(t, err, "invalid timestamp 999999999999")
	_, err = f.entries.SetEnd(ctx, entry.ID, 253_402_300_800)
	assert.ErrorIs(t, err, service.ErrValidation)

	got, err := f.entries.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, got.Start.Equal(entry.Start))
	assert.Nil(t, got.End)
}

func TestTimeEntryService_OwningTaskAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.CreateTask(ctx, service.TaskInput{Description: "A"})
	require.NoError(t, err)
	entry, err := f.entries.StartForTask(ctx, task.ID)
	require.NoError(t, err)

	owner, err := f.entries.OwningTask(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, owner.ID)
	require.Len(t, owner.TimeEntries, 1)

	require.NoError(t, f.entries.Delete(ctx, entry.ID))

	entries, err := f.entries.ListForTask(ctx, task.ID)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	stopped, err := f.entries.ListStopped(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, stopped)
}
