package service_test

import (
	"testing"
	"time"

	"timetracker/internal/repository"
	"timetracker/internal/service"
	"timetracker/internal/testutil"
)

type fixture struct {
	tasks   *service.TaskService
	entries *service.TimeEntryService
	reports *service.ReportService
	clock   *fakeClock
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	taskRepo := repository.NewTaskRepository(db)
	entryRepo := repository.NewTimeEntryRepository(db)

	clock := &fakeClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	tasks := service.NewTaskService(taskRepo, entryRepo)
	entries := service.NewTimeEntryService(entryRepo, tasks)
	entries.SetClock(clock.Now)

	return &fixture{
		tasks:   tasks,
		entries: entries,
		reports: service.NewReportService(taskRepo, entryRepo),
		clock:   clock,
	}
}
