package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/logger"
	"github.com/taskflow/backend/internal/model"
)

const startLockTTL = 5 * time.Second

type SessionsByTask struct {
	TaskTitle    string `json:"task_title"`
	TotalTime    int64  `json:"total_time"`
	SessionCount int    `json:"session_count"`
}

type TimeAnalytics struct {
	TotalTime                   int64            `json:"total_time"`
	TotalTimeFormatted          string           `json:"total_time_formatted"`
	AvgSessionDuration          float64          `json:"avg_session_duration"`
	AvgSessionDurationFormatted string           `json:"avg_session_duration_formatted"`
	TotalSessions               int              `json:"total_sessions"`
	ActiveSessions              int              `json:"active_sessions"`
	TodayTime                   int64            `json:"today_time"`
	TodayTimeFormatted          string           `json:"today_time_formatted"`
	SessionsByTask              []SessionsByTask `json:"sessions_by_task"`
	PeriodDays                  int              `json:"period_days"`
}

// TimeTracker manages time sessions. The invariant "at most one active
// session per user" is enforced at start time: the deactivate+insert pair
// runs in one transaction, and concurrent starts for the same user are
// serialized through a Redis lock when Redis is configured.
type TimeTracker struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewTimeTracker(db *gorm.DB, rdb *redis.Client) *TimeTracker {
	return &TimeTracker{db: db, rdb: rdb}
}

func (t *TimeTracker) Start(ctx context.Context, userID uint, taskID *uint, description string) (*model.TimeSession, error) {
	unlock, err := t.lockStart(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	taskTitle := "General Work"
	if taskID != nil {
		var task model.Task
		if e := t.db.First(&task, *taskID).Error; e != nil {
			return nil, fmt.Errorf("40403:task not found")
		}
		taskTitle = task.Title
	}

	session := &model.TimeSession{
		UserID:      userID,
		TaskID:      taskID,
		TaskTitle:   taskTitle,
		StartTime:   time.Now(),
		IsActive:    true,
		Description: description,
	}

	err = t.db.Transaction(func(tx *gorm.DB) error {
		// Force any prior active session idle. Deactivation only: no end
		// time or duration is written for the abandoned session.
		if e := tx.Model(&model.TimeSession{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Update("is_active", false).Error; e != nil {
			return e
		}
		return tx.Create(session).Error
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (t *TimeTracker) Stop(userID, sessionID uint) (*model.TimeSession, error) {
	var session model.TimeSession
	if err := t.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error; err != nil {
		return nil, fmt.Errorf("40404:session not found")
	}
	if !session.IsActive {
		return nil, fmt.Errorf("40010:session is not active")
	}

	end := time.Now()
	duration := end.Sub(session.StartTime).Milliseconds()
	if err := t.db.Model(&session).Updates(map[string]interface{}{
		"end_time":  &end,
		"duration":  duration,
		"is_active": false,
	}).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// Active returns the user's active session, or nil when idle.
func (t *TimeTracker) Active(userID uint) (*model.TimeSession, error) {
	var session model.TimeSession
	err := t.db.Preload("Task").
		Where("user_id = ? AND is_active = ?", userID, true).
		First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (t *TimeTracker) List(userID uint, taskID *uint, isActive *bool) ([]model.TimeSession, error) {
	query := t.db.Preload("Task").Where("user_id = ?", userID)
	if taskID != nil {
		query = query.Where("task_id = ?", *taskID)
	}
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}
	var sessions []model.TimeSession
	if err := query.Order("start_time desc").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// Analytics aggregates the user's sessions over the lookback window.
func (t *TimeTracker) Analytics(userID uint, days int) (*TimeAnalytics, error) {
	if days <= 0 {
		days = 30
	}
	now := time.Now()
	since := now.AddDate(0, 0, -days)

	var sessions []model.TimeSession
	if err := t.db.Where("user_id = ? AND start_time >= ?", userID, since).Find(&sessions).Error; err != nil {
		return nil, err
	}

	var total, todayTotal int64
	active := 0
	byTask := make(map[string]*SessionsByTask)
	ty, tm, td := now.Date()
	for _, s := range sessions {
		total += s.Duration
		if s.IsActive {
			active++
		}
		sy, sm, sd := s.StartTime.Date()
		if sy == ty && sm == tm && sd == td {
			todayTotal += s.Duration
		}
		entry := byTask[s.TaskTitle]
		if entry == nil {
			entry = &SessionsByTask{TaskTitle: s.TaskTitle}
			byTask[s.TaskTitle] = entry
		}
		entry.TotalTime += s.Duration
		entry.SessionCount++
	}

	var avg float64
	if len(sessions) > 0 {
		avg = float64(total) / float64(len(sessions))
	}

	breakdown := make([]SessionsByTask, 0, len(byTask))
	for _, e := range byTask {
		breakdown = append(breakdown, *e)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].TotalTime != breakdown[j].TotalTime {
			return breakdown[i].TotalTime > breakdown[j].TotalTime
		}
		return breakdown[i].TaskTitle < breakdown[j].TaskTitle
	})
	if len(breakdown) > 10 {
		breakdown = breakdown[:10]
	}

	return &TimeAnalytics{
		TotalTime:                   total,
		TotalTimeFormatted:          model.FormatDuration(total),
		AvgSessionDuration:          avg,
		AvgSessionDurationFormatted: model.FormatDuration(int64(avg)),
		TotalSessions:               len(sessions),
		ActiveSessions:              active,
		TodayTime:                   todayTotal,
		TodayTimeFormatted:          model.FormatDuration(todayTotal),
		SessionsByTask:              breakdown,
		PeriodDays:                  days,
	}, nil
}

// lockStart serializes concurrent start calls for one user. Without Redis the
// transaction alone covers single-instance deployments.
func (t *TimeTracker) lockStart(ctx context.Context, userID uint) (func(), error) {
	if t.rdb == nil {
		return func() {}, nil
	}
	key := fmt.Sprintf("timetracking:start:%d", userID)
	for i := 0; i < 3; i++ {
		ok, err := t.rdb.SetNX(ctx, key, 1, startLockTTL).Result()
		if err != nil {
			logger.Warn("time tracking lock unavailable, falling back to transaction: %v", err)
			return func() {}, nil
		}
		if ok {
			return func() { t.rdb.Del(context.Background(), key) }, nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return nil, fmt.Errorf("40011:another session start is in progress")
}
