package handler

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/taskflow/backend/internal/model"
	"github.com/taskflow/backend/internal/service"
)

func newHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.ProjectMember{},
		&model.Task{},
		&model.TaskAssignment{},
		&model.TaskActivity{},
	))
	return db
}

func TestKanbanFiltersByProjectQueryParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newHandlerTestDB(t)

	sm := &model.User{Email: "sm@example.com", Password: "x", Role: model.RoleScrumMaster}
	require.NoError(t, db.Create(sm).Error)

	alpha := &model.Project{Name: "alpha", CreatedByID: sm.ID, IsActive: true}
	beta := &model.Project{Name: "beta", CreatedByID: sm.ID, IsActive: true}
	require.NoError(t, db.Create(alpha).Error)
	require.NoError(t, db.Create(beta).Error)

	require.NoError(t, db.Create(&model.Task{
		Title: "in alpha", ProjectID: alpha.ID, CreatedByID: sm.ID,
		Priority: model.PriorityMedium, Status: model.StatusTodo,
	}).Error)
	require.NoError(t, db.Create(&model.Task{
		Title: "in beta", ProjectID: beta.ID, CreatedByID: sm.ID,
		Priority: model.PriorityMedium, Status: model.StatusTodo,
	}).Error)

	h := NewTaskHandler(service.NewTaskService(db), nil, nil)

	board := func(query string) *service.KanbanBoard {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/api/tasks/kanban"+query, nil)
		c.Set("user", sm)
		h.Kanban(c)
		require.Equal(t, 200, w.Code)

		var resp struct {
			Data service.KanbanBoard `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return &resp.Data
	}

	filtered := board(fmt.Sprintf("?project=%d", alpha.ID))
	require.Len(t, filtered.Todo, 1)
	require.Equal(t, "in alpha", filtered.Todo[0].Title)

	legacy := board(fmt.Sprintf("?project_id=%d", alpha.ID))
	require.Len(t, legacy.Todo, 1)

	unfiltered := board("")
	require.Len(t, unfiltered.Todo, 2)
}
