package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/taskflow/backend/internal/middleware"
	"github.com/taskflow/backend/internal/service"
)

type ProjectHandler struct {
	projectService   *service.ProjectService
	messageService   *service.MessageService
	analyticsService *service.AnalyticsService
}

func NewProjectHandler(projectService *service.ProjectService, messageService *service.MessageService, analyticsService *service.AnalyticsService) *ProjectHandler {
	return &ProjectHandler{
		projectService:   projectService,
		messageService:   messageService,
		analyticsService: analyticsService,
	}
}

// POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,max=128"`
		Description string `json:"description"`
		MemberIDs   []uint `json:"member_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	project, err := h.projectService.Create(req.Name, req.Description, middleware.GetCurrentUserID(c), req.MemberIDs)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, project)
}

// GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	projects, err := h.projectService.List(user)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	list := make([]gin.H, 0, len(projects))
	for _, p := range projects {
		list = append(list, gin.H{
			"id":          p.ID,
			"name":        p.Name,
			"description": p.Description,
			"created_by":  p.CreatedBy,
			"created_at":  p.CreatedAt,
			"task_count":  h.projectService.TaskCount(p.ID),
		})
	}
	Success(c, list)
}

// GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projectService.GetVisible(parseID(c.Param("id")), middleware.GetCurrentUser(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, project)
}

// PUT /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	project, err := h.projectService.Update(parseID(c.Param("id")), updates)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, project)
}

// DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.projectService.Deactivate(parseID(c.Param("id"))); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"message": "project deactivated"})
}

// GET /projects/:id/members
func (h *ProjectHandler) Members(c *gin.Context) {
	members, err := h.projectService.Members(parseID(c.Param("id")))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, members)
}

// POST /projects/:id/members
func (h *ProjectHandler) AddMember(c *gin.Context) {
	var req struct {
		UserID uint   `json:"user_id" binding:"required"`
		Role   string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	member, err := h.projectService.AddMember(parseID(c.Param("id")), req.UserID, req.Role)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, member)
}

// DELETE /projects/:id/members/:user_id
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	if err := h.projectService.RemoveMember(parseID(c.Param("id")), parseID(c.Param("user_id"))); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"message": "member removed"})
}

// GET /projects/:id/messages
func (h *ProjectHandler) Messages(c *gin.Context) {
	messages, err := h.messageService.List(parseID(c.Param("id")), middleware.GetCurrentUser(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, messages)
}

// POST /projects/:id/messages
func (h *ProjectHandler) PostMessage(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	message, err := h.messageService.Post(parseID(c.Param("id")), middleware.GetCurrentUser(c), req.Content)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, message)
}

// GET /projects/:id/analytics
func (h *ProjectHandler) Analytics(c *gin.Context) {
	report, err := h.analyticsService.ProjectAnalytics(parseID(c.Param("id")))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, report)
}

// GET /projects/:id/member-performance
func (h *ProjectHandler) MemberPerformance(c *gin.Context) {
	report, err := h.analyticsService.MemberPerformance(parseID(c.Param("id")))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, report)
}
