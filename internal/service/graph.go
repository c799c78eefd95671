package service

import (
	"context"
	"fmt"

	"timetracker/internal/model"
	"timetracker/internal/repository"
)

// taskGraph is the part of the subtask graph reachable from a set of roots,
// with the time entries of every task in it.
type taskGraph struct {
	tasks    map[uint]model.Task
	children map[uint][]uint
	entries  map[uint][]model.TimeEntry
}

func loadGraph(ctx context.Context, taskRepo *repository.TaskRepository, entryRepo *repository.TimeEntryRepository, roots []model.Task) (*taskGraph, error) {
	g := &taskGraph{
		tasks:    make(map[uint]model.Task, len(roots)),
		children: make(map[uint][]uint),
		entries:  make(map[uint][]model.TimeEntry),
	}

	var frontier []uint
	for _, t := range roots {
		if _, ok := g.tasks[t.ID]; ok {
			continue
		}
		g.tasks[t.ID] = t
		frontier = append(frontier, t.ID)
	}

	// Breadth-first, one query per level.
	for len(frontier) > 0 {
		links, err := taskRepo.Links(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("load subtask links: %w", err)
		}

		var missing []uint
		queued := make(map[uint]bool)
		for _, link := range links {
			g.children[link.ParentTaskID] = append(g.children[link.ParentTaskID], link.SubtaskID)
			if _, ok := g.tasks[link.SubtaskID]; ok || queued[link.SubtaskID] {
				continue
			}
			queued[link.SubtaskID] = true
			missing = append(missing, link.SubtaskID)
		}

		loaded, err := taskRepo.ListByIDs(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("load subtasks: %w", err)
		}
		frontier = nil
		for _, t := range loaded {
			g.tasks[t.ID] = t
			frontier = append(frontier, t.ID)
		}
	}

	ids := make([]uint, 0, len(g.tasks))
	for id := range g.tasks {
		ids = append(ids, id)
	}
	entries, err := entryRepo.ListByTasks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load time entries: %w", err)
	}
	for _, e := range entries {
		g.entries[e.TaskID] = append(g.entries[e.TaskID], e)
	}

	return g, nil
}

// view renders id and its subtree. Children already on the current path are
// skipped so a cyclic graph still serialises.
func (g *taskGraph) view(id uint, path map[uint]bool) model.TaskView {
	t := g.tasks[id]
	v := model.TaskView{
		ID:          t.ID,
		Notes:       t.Notes,
		Description: t.Description,
		Subtasks:    []model.TaskView{},
		TimeEntries: g.entries[id],
	}
	if v.TimeEntries == nil {
		v.TimeEntries = []model.TimeEntry{}
	}

	path[id] = true
	for _, child := range g.children[id] {
		if path[child] {
			continue
		}
		if _, ok := g.tasks[child]; !ok {
			continue
		}
		v.Subtasks = append(v.Subtasks, g.view(child, path))
	}
	delete(path, id)

	return v
}
