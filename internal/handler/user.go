package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/taskflow/backend/internal/service"
)

type UserHandler struct {
	authService *service.AuthService
}

func NewUserHandler(authService *service.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.authService.ListUsers()
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	list := make([]gin.H, 0, len(users))
	for _, u := range users {
		list = append(list, gin.H{
			"id":         u.ID,
			"email":      u.Email,
			"name":       u.FullName(),
			"role":       u.Role,
			"created_at": u.CreatedAt,
		})
	}
	Success(c, list)
}

// GET /users/employees
func (h *UserHandler) ListEmployees(c *gin.Context) {
	users, err := h.authService.ListEmployees()
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	list := make([]gin.H, 0, len(users))
	for _, u := range users {
		list = append(list, gin.H{
			"id":    u.ID,
			"email": u.Email,
			"name":  u.FullName(),
		})
	}
	Success(c, list)
}
