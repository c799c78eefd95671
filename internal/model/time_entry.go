package model

import "time"

// TimeEntry is an interval of work against a task. A nil End means the
// entry is still running.
type TimeEntry struct {
	ID     uint       `gorm:"primaryKey" json:"id"`
	TaskID uint       `gorm:"index;not null" json:"task_id"`
	Start  time.Time  `gorm:"column:started_at;not null" json:"start"`
	End    *time.Time `gorm:"column:ended_at;index" json:"end"`
}

