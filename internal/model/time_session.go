package model

import (
	"fmt"
	"time"
)

type TimeSession struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index:idx_time_session_user_id" json:"user_id"`
	TaskID      *uint      `json:"task_id"`
	TaskTitle   string     `gorm:"type:varchar(200)" json:"task_title"`
	StartTime   time.Time  `gorm:"not null;index:idx_start_time" json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Duration    int64      `gorm:"not null;default:0" json:"duration"` // milliseconds
	IsActive    bool       `gorm:"not null;default:false" json:"is_active"`
	Description string     `gorm:"type:text" json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Task *Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}

func (TimeSession) TableName() string { return "time_sessions" }

func (s *TimeSession) FormattedDuration() string {
	return FormatDuration(s.Duration)
}

// FormatDuration renders milliseconds as HH:MM:SS, truncating to whole seconds.
func FormatDuration(ms int64) string {
	if ms <= 0 {
		return "00:00:00"
	}
	total := ms / 1000
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
