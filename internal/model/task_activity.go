package model

import "time"

const (
	ActivityCreated        = "created"
	ActivityUpdated        = "updated"
	ActivityAssigned       = "assigned"
	ActivityStatusChanged  = "status_changed"
	ActivityCommented      = "commented"
	ActivityDueDateChanged = "due_date_changed"
)

// TaskActivity is an append-only audit entry. Rows are never updated or deleted.
type TaskActivity struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TaskID       uint      `gorm:"not null;index:idx_task_activity_task_id" json:"task_id"`
	UserID       uint      `gorm:"not null" json:"user_id"`
	ActivityType string    `gorm:"type:varchar(20);not null" json:"activity_type"`
	Description  string    `gorm:"type:text" json:"description"`
	OldValue     string    `gorm:"type:text" json:"old_value,omitempty"`
	NewValue     string    `gorm:"type:text" json:"new_value,omitempty"`
	CreatedAt    time.Time `gorm:"index:idx_created_at" json:"created_at"`

	Task *Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (TaskActivity) TableName() string { return "task_activities" }
