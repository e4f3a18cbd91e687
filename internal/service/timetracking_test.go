package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskflow/backend/internal/model"
)

func TestStartCreatesActiveSession(t *testing.T) {
	db := newTestDB(t)
	tracker := NewTimeTracker(db, nil)
	user := createUser(t, db, "alice@example.com", model.RoleEmployee)

	session, err := tracker.Start(context.Background(), user.ID, nil, "focus block")
	require.NoError(t, err)
	require.True(t, session.IsActive)
	require.Equal(t, "General Work", session.TaskTitle)
	require.Equal(t, int64(0), session.Duration)
}

func TestStartDeactivatesPriorSessionWithoutDuration(t *testing.T) {
	db := newTestDB(t)
	tracker := NewTimeTracker(db, nil)
	user := createUser(t, db, "alice@example.com", model.RoleEmployee)

	first, err := tracker.Start(context.Background(), user.ID, nil, "")
	require.NoError(t, err)
	second, err := tracker.Start(context.Background(), user.ID, nil, "")
	require.NoError(t, err)

	var count int64
	db.Model(&model.TimeSession{}).Where("user_id = ? AND is_active = ?", user.ID, true).Count(&count)
	require.Equal(t, int64(1), count)

	// The abandoned session is deactivated only: no end time, no duration.
	var abandoned model.TimeSession
	require.NoError(t, db.First(&abandoned, first.ID).Error)
	require.False(t, abandoned.IsActive)
	require.Nil(t, abandoned.EndTime)
	require.Equal(t, int64(0), abandoned.Duration)

	active, err := tracker.Active(user.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	require.Equal(t, second.ID, active.ID)
}

func TestStartUnknownTask(t *testing.T) {
	db := newTestDB(t)
	tracker := NewTimeTracker(db, nil)
	user := createUser(t, db, "alice@example.com", model.RoleEmployee)

	missing := uint(4242)
	_, err := tracker.Start(context.Background(), user.ID, &missing, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "40403")
}

func TestStopRecordsDuration(t *testing.T) {
	db := newTestDB(t)
	tracker := NewTimeTracker(db, nil)
	user := createUser(t, db, "alice@example.com", model.RoleEmployee)

	session, err := tracker.Start(context.Background(), user.ID, nil, "")
	require.NoError(t, err)

	stopped, err := tracker.Stop(user.ID, session.ID)
	require.NoError(t, err)
	require.False(t, stopped.IsActive)
	require.NotNil(t, stopped.EndTime)
	require.GreaterOrEqual(t, stopped.Duration, int64(0))
}

func TestStopInactiveSessionFailsWithoutMutation(t *testing.T) {
	db := newTestDB(t)
	tracker := NewTimeTracker(db, nil)
	user := createUser(t, db, "alice@example.com", model.RoleEmployee)

	session, err := tracker.Start(context.Background(), user.ID, nil, "")
	require.NoError(t, err)
	first, err := tracker.Stop(user.ID, session.ID)
	require.NoError(t, err)

	_, err = tracker.Stop(user.ID, session.ID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "40010")

	var after model.TimeSession
	require.NoError(t, db.First(&after, session.ID).Error)
	require.Equal(t, first.Duration, after.Duration)
	require.False(t, after.IsActive)
}

func TestStopOtherUsersSession(t *testing.T) {
	db := newTestDB(t)
	tracker := NewTimeTracker(db, nil)
	alice := createUser(t, db, "alice@example.com", model.RoleEmployee)
	bob := createUser(t, db, "bob@example.com", model.RoleEmployee)

	session, err := tracker.Start(context.Background(), alice.ID, nil, "")
	require.NoError(t, err)

	_, err = tracker.Stop(bob.ID, session.ID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "40404")
}

func TestActiveReturnsNilWhenIdle(t *testing.T) {
	db := newTestDB(t)
	tracker := NewTimeTracker(db, nil)
	user := createUser(t, db, "alice@example.com", model.RoleEmployee)

	session, err := tracker.Active(user.ID)
	require.NoError(t, err)
	require.Nil(t, session)
}

func TestAnalyticsAggregatesByTask(t *testing.T) {
	db := newTestDB(t)
	tracker := NewTimeTracker(db, nil)
	user := createUser(t, db, "alice@example.com", model.RoleEmployee)

	sessions := []model.TimeSession{
		{UserID: user.ID, TaskTitle: "Design", StartTime: timeNowMinusHours(2), Duration: 3_600_000},
		{UserID: user.ID, TaskTitle: "Design", StartTime: timeNowMinusHours(1), Duration: 1_800_000},
		{UserID: user.ID, TaskTitle: "Review", StartTime: timeNowMinusHours(1), Duration: 600_000},
	}
	for i := range sessions {
		require.NoError(t, db.Create(&sessions[i]).Error)
	}

	report, err := tracker.Analytics(user.ID, 7)
	require.NoError(t, err)
	require.Equal(t, int64(6_000_000), report.TotalTime)
	require.Equal(t, "01:40:00", report.TotalTimeFormatted)
	require.Equal(t, 3, report.TotalSessions)
	require.Equal(t, 0, report.ActiveSessions)
	require.Equal(t, 7, report.PeriodDays)

	require.Len(t, report.SessionsByTask, 2)
	require.Equal(t, "Design", report.SessionsByTask[0].TaskTitle)
	require.Equal(t, int64(5_400_000), report.SessionsByTask[0].TotalTime)
	require.Equal(t, 2, report.SessionsByTask[0].SessionCount)
}

func TestAnalyticsDefaultsPeriod(t *testing.T) {
	db := newTestDB(t)
	tracker := NewTimeTracker(db, nil)
	user := createUser(t, db, "alice@example.com", model.RoleEmployee)

	report, err := tracker.Analytics(user.ID, 0)
	require.NoError(t, err)
	require.Equal(t, 30, report.PeriodDays)
	require.Equal(t, "00:00:00", report.TotalTimeFormatted)
}
