package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskflow/backend/internal/middleware"
	"github.com/taskflow/backend/internal/service"
)

type TaskHandler struct {
	taskService      *service.TaskService
	analyticsService *service.AnalyticsService
	notificationFeed *service.NotificationFeed
}

func NewTaskHandler(taskService *service.TaskService, analyticsService *service.AnalyticsService, notificationFeed *service.NotificationFeed) *TaskHandler {
	return &TaskHandler{
		taskService:      taskService,
		analyticsService: analyticsService,
		notificationFeed: notificationFeed,
	}
}

// POST /tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req struct {
		Title       string     `json:"title" binding:"required,max=256"`
		Description string     `json:"description"`
		ProjectID   uint       `json:"project_id" binding:"required"`
		Priority    string     `json:"priority"`
		DueDate     *time.Time `json:"due_date"`
		AssigneeIDs []uint     `json:"assignee_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	task, err := h.taskService.Create(middleware.GetCurrentUser(c), req.Title, req.Description, req.ProjectID, req.Priority, req.DueDate, req.AssigneeIDs)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, task)
}

// GET /tasks
func (h *TaskHandler) List(c *gin.Context) {
	filters := service.TaskFilters{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
		SortBy:   c.Query("sort_by"),
		Order:    c.Query("order"),
	}
	if v := c.Query("project_id"); v != "" {
		id := parseID(v)
		filters.ProjectID = &id
	}

	tasks, err := h.taskService.List(middleware.GetCurrentUser(c), filters)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, tasks)
}

// GET /tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.taskService.Get(parseID(c.Param("id")), middleware.GetCurrentUser(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, task)
}

// PUT /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	allowed := map[string]bool{
		"title": true, "description": true, "status": true,
		"priority": true, "due_date": true,
	}
	updates := make(map[string]interface{}, len(req))
	for field, value := range req {
		if !allowed[field] {
			BadRequest(c, 40001, "unknown field: "+field)
			return
		}
		updates[field] = value
	}

	task, err := h.taskService.Update(parseID(c.Param("id")), middleware.GetCurrentUser(c), updates)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, task)
}

// PATCH /tasks/:id/status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	task, err := h.taskService.UpdateStatus(parseID(c.Param("id")), middleware.GetCurrentUser(c), req.Status)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, task)
}

// DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.taskService.Delete(parseID(c.Param("id"))); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"message": "task deleted"})
}

// PUT /tasks/:id/assignees
func (h *TaskHandler) SetAssignees(c *gin.Context) {
	var req struct {
		UserIDs []uint `json:"user_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	task, err := h.taskService.SetAssignees(parseID(c.Param("id")), middleware.GetCurrentUser(c), req.UserIDs)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, task)
}

// GET /tasks/:id/comments
func (h *TaskHandler) Comments(c *gin.Context) {
	comments, err := h.taskService.Comments(parseID(c.Param("id")), middleware.GetCurrentUser(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, comments)
}

// POST /tasks/:id/comments
func (h *TaskHandler) AddComment(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	comment, err := h.taskService.AddComment(parseID(c.Param("id")), middleware.GetCurrentUser(c), req.Content)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, comment)
}

// GET /tasks/kanban?project=N
func (h *TaskHandler) Kanban(c *gin.Context) {
	var projectID *uint
	v := c.Query("project")
	if v == "" {
		v = c.Query("project_id")
	}
	if v != "" {
		id := parseID(v)
		projectID = &id
	}

	board, err := h.taskService.Kanban(middleware.GetCurrentUser(c), projectID)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, board)
}

// GET /tasks/analytics
func (h *TaskHandler) Analytics(c *gin.Context) {
	report, err := h.analyticsService.TaskAnalytics(middleware.GetCurrentUser(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, report)
}

// GET /tasks/notifications
func (h *TaskHandler) Notifications(c *gin.Context) {
	items, err := h.notificationFeed.Feed(middleware.GetCurrentUser(c))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{
		"notifications": items,
		"count":         len(items),
	})
}
