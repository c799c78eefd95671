package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"timetracker/internal/model"
	"timetracker/internal/repository"
)

// reportWindow is how far back the report looks for stopped entries.
const reportWindow = 24 * time.Hour

// ReportService builds human-readable summaries of tracked time.
type ReportService struct {
	taskRepo  *repository.TaskRepository
	entryRepo *repository.TimeEntryRepository
}

func NewReportService(taskRepo *repository.TaskRepository, entryRepo *repository.TimeEntryRepository) *ReportService {
	return &ReportService{taskRepo: taskRepo, entryRepo: entryRepo}
}

// Summary lists running timers with their elapsed time and the time logged
// by entries stopped during the last day.
func (s *ReportService) Summary(ctx context.Context, now time.Time) (string, error) {
	running, err := s.entryRepo.ListByState(ctx, true, nil)
	if err != nil {
		return "", fmt.Errorf("list running entries: %w", err)
	}
	stopped, err := s.entryRepo.ListEndedSince(ctx, now.Add(-reportWindow))
	if err != nil {
		return "", fmt.Errorf("list stopped entries: %w", err)
	}

	names, err := s.taskNames(ctx, running, stopped)
	if err != nil {
		return "", err
	}

	sort.SliceStable(running, func(i, j int) bool {
		return running[i].Start.Before(running[j].Start)
	})

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Timer report %s\n\n", now.Format("2006-01-02 15:04 MST")))

	builder.WriteString("Running timers\n")
	if len(running) == 0 {
		builder.WriteString("- none\n")
	} else {
		for _, entry := range running {
			builder.WriteString(fmt.Sprintf("- #%d %s: %s (since %s)\n",
				entry.TaskID, names[entry.TaskID], formatElapsed(now.Sub(entry.Start)), entry.Start.In(now.Location()).Format("15:04")))
		}
	}

	builder.WriteString("\nStopped in the last 24h\n")
	if len(stopped) == 0 {
		builder.WriteString("- none\n")
	} else {
		perTask := make(map[uint]time.Duration)
		var order []uint
		var total time.Duration
		for _, entry := range stopped {
			if _, ok := perTask[entry.TaskID]; !ok {
				order = append(order, entry.TaskID)
			}
			d := entry.End.Sub(entry.Start)
			if d < 0 {
				d = 0
			}
			perTask[entry.TaskID] += d
			total += d
		}
		for _, id := range order {
			builder.WriteString(fmt.Sprintf("- #%d %s: %s\n", id, names[id], formatElapsed(perTask[id])))
		}
		builder.WriteString(fmt.Sprintf("Total: %s\n", formatElapsed(total)))
	}

	return strings.TrimSpace(builder.String()), nil
}

func (s *ReportService) taskNames(ctx context.Context, groups ...[]model.TimeEntry) (map[uint]string, error) {
	seen := make(map[uint]bool)
	var ids []uint
	for _, entries := range groups {
		for _, e := range entries {
			if !seen[e.TaskID] {
				seen[e.TaskID] = true
				ids = append(ids, e.TaskID)
			}
		}
	}

	tasks, err := s.taskRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list report tasks: %w", err)
	}
	names := make(map[uint]string, len(tasks))
	for _, t := range tasks {
		names[t.ID] = strings.TrimSpace(t.Description)
	}
	return names, nil
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Minute)
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh%02dm", hours, minutes)
}
