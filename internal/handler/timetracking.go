package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taskflow/backend/internal/middleware"
	"github.com/taskflow/backend/internal/model"
	"github.com/taskflow/backend/internal/service"
)

type TimeTrackingHandler struct {
	tracker *service.TimeTracker
}

func NewTimeTrackingHandler(tracker *service.TimeTracker) *TimeTrackingHandler {
	return &TimeTrackingHandler{tracker: tracker}
}

// POST /time-tracking/start
func (h *TimeTrackingHandler) Start(c *gin.Context) {
	var req struct {
		TaskID      *uint  `json:"task_id"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	session, err := h.tracker.Start(c.Request.Context(), middleware.GetCurrentUserID(c), req.TaskID, req.Description)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, sessionView(session))
}

// POST /time-tracking/stop/:id
func (h *TimeTrackingHandler) Stop(c *gin.Context) {
	session, err := h.tracker.Stop(middleware.GetCurrentUserID(c), parseID(c.Param("id")))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, sessionView(session))
}

// GET /time-tracking/active-session
func (h *TimeTrackingHandler) Active(c *gin.Context) {
	session, err := h.tracker.Active(middleware.GetCurrentUserID(c))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	if session == nil {
		Success(c, gin.H{"active": false})
		return
	}
	Success(c, gin.H{"active": true, "session": sessionView(session)})
}

// GET /time-tracking/sessions
func (h *TimeTrackingHandler) Sessions(c *gin.Context) {
	var taskID *uint
	if v := c.Query("task_id"); v != "" {
		id := parseID(v)
		taskID = &id
	}
	var isActive *bool
	switch c.Query("is_active") {
	case "true":
		v := true
		isActive = &v
	case "false":
		v := false
		isActive = &v
	}

	sessions, err := h.tracker.List(middleware.GetCurrentUserID(c), taskID, isActive)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	list := make([]gin.H, 0, len(sessions))
	for i := range sessions {
		list = append(list, sessionView(&sessions[i]))
	}
	Success(c, list)
}

// GET /time-tracking/analytics
func (h *TimeTrackingHandler) Analytics(c *gin.Context) {
	report, err := h.tracker.Analytics(middleware.GetCurrentUserID(c), parseDays(c))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, report)
}

func parseDays(c *gin.Context) int {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	return days
}

func sessionView(s *model.TimeSession) gin.H {
	return gin.H{
		"id":                 s.ID,
		"task_id":            s.TaskID,
		"task_title":         s.TaskTitle,
		"description":        s.Description,
		"start_time":         s.StartTime,
		"end_time":           s.EndTime,
		"duration":           s.Duration,
		"duration_formatted": model.FormatDuration(s.Duration),
		"is_active":          s.IsActive,
	}
}
