package model

import "time"

// TaskAssignment is the authoritative many-to-many assignee relation.
// Task.AssigneeID is a derived convenience column (first active assignment).
type TaskAssignment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TaskID     uint      `gorm:"not null;uniqueIndex:uk_task_user" json:"task_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:uk_task_user;index:idx_task_assignment_user_id" json:"user_id"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assigned_at"`

	Task *Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (TaskAssignment) TableName() string { return "task_assignments" }
