package model

import "time"

// Task is a unit of trackable work. Subtasks live in the subtasks
// association table, time entries reference the task by TaskID.
type Task struct {
	ID          uint   `gorm:"primaryKey"`
	Description string `gorm:"not null"`
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SubtaskLink is one parent -> child edge of the subtask graph.
type SubtaskLink struct {
	ParentTaskID uint `gorm:"primaryKey;autoIncrement:false"`
	SubtaskID    uint `gorm:"primaryKey;autoIncrement:false;index"`
}

func (SubtaskLink) TableName() string {
	return "subtasks"
}

// TaskView is the wire representation of a task with its subtree.
type TaskView struct {
	ID          uint        `json:"id"`
	Notes       *string     `json:"notes"`
	Description string      `json:"description"`
	Subtasks    []TaskView  `json:"subtasks"`
	TimeEntries []TimeEntry `json:"time_entries"`
}
