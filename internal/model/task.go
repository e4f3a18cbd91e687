package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
	StatusDone       = "done"

	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type Task struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"type:varchar(200);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	ProjectID   uint           `gorm:"not null;index:idx_task_project_id" json:"project_id"`
	AssigneeID  *uint          `gorm:"index:idx_assignee_id" json:"assignee_id"`
	CreatedByID uint           `gorm:"not null" json:"created_by_id"`
	Priority    string         `gorm:"type:varchar(10);not null;default:medium" json:"priority"`
	Status      string         `gorm:"type:varchar(20);not null;default:todo;index:idx_status" json:"status"`
	DueDate     *time.Time     `json:"due_date"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Project     *Project         `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Assignee    *User            `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	CreatedBy   *User            `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID" json:"assignments,omitempty"`
	Comments    []TaskComment    `gorm:"foreignKey:TaskID" json:"comments,omitempty"`
}

func (Task) TableName() string { return "tasks" }

func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.Status != StatusDone && now.After(*t.DueDate)
}
