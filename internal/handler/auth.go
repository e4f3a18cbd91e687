package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/taskflow/backend/internal/middleware"
	"github.com/taskflow/backend/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=8"`
		FirstName string `json:"first_name" binding:"max=64"`
		LastName  string `json:"last_name" binding:"max=64"`
		Role      string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	user, token, expireAt, err := h.authService.Register(req.Email, req.Password, req.FirstName, req.LastName, req.Role)
	if err != nil {
		RespondError(c, err)
		return
	}

	Success(c, gin.H{
		"token":      token,
		"expires_at": expireAt,
		"user":       user.Brief(),
	})
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	user, token, expireAt, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}

	Success(c, gin.H{
		"token":      token,
		"expires_at": expireAt,
		"user":       user.Brief(),
	})
}

// GET /auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	Success(c, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"name":       user.FullName(),
		"role":       user.Role,
		"created_at": user.CreatedAt,
	})
}

// PUT /auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}

	user, err := h.authService.UpdateProfile(middleware.GetCurrentUserID(c), updates)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, user.Brief())
}

// POST /auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "validation failed: "+err.Error())
		return
	}

	if err := h.authService.ChangePassword(middleware.GetCurrentUserID(c), req.OldPassword, req.NewPassword); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"message": "password changed"})
}
