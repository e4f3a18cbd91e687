package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/taskflow/backend/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.ProjectMember{},
		&model.ProjectMessage{},
		&model.Task{},
		&model.TaskAssignment{},
		&model.TaskComment{},
		&model.TaskActivity{},
		&model.TimeSession{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, role string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Password: "x", Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createProject(t *testing.T, db *gorm.DB, name string, createdByID uint) *model.Project {
	t.Helper()
	project := &model.Project{Name: name, CreatedByID: createdByID, IsActive: true}
	require.NoError(t, db.Create(project).Error)
	return project
}

func addMember(t *testing.T, db *gorm.DB, projectID, userID uint, role string) {
	t.Helper()
	require.NoError(t, db.Create(&model.ProjectMember{
		ProjectID: projectID, UserID: userID, Role: role, IsActive: true,
	}).Error)
}

func createTask(t *testing.T, db *gorm.DB, projectID, createdByID uint, status string, assigneeID *uint) *model.Task {
	t.Helper()
	task := &model.Task{
		Title:       fmt.Sprintf("task-%s", status),
		ProjectID:   projectID,
		CreatedByID: createdByID,
		Priority:    model.PriorityMedium,
		Status:      status,
		AssigneeID:  assigneeID,
	}
	require.NoError(t, db.Create(task).Error)
	if assigneeID != nil {
		require.NoError(t, db.Create(&model.TaskAssignment{
			TaskID: task.ID, UserID: *assigneeID, IsActive: true,
		}).Error)
	}
	return task
}

func timeNowMinusHours(h int) time.Time {
	return time.Now().Add(-time.Duration(h) * time.Hour)
}
