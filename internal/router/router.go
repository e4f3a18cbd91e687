package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/handler"
	"github.com/taskflow/backend/internal/metrics"
	"github.com/taskflow/backend/internal/middleware"
	"github.com/taskflow/backend/internal/model"
)

type Deps struct {
	DB                  *gorm.DB
	JWTSecret           string
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	ProjectHandler      *handler.ProjectHandler
	TaskHandler         *handler.TaskHandler
	TimeTrackingHandler *handler.TimeTrackingHandler
}

func Setup(r *gin.Engine, deps Deps) {
	r.Use(middleware.CORSMiddleware())
	r.Use(metrics.Middleware())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")

	// Public routes (no auth)
	auth := api.Group("/auth")
	{
		auth.POST("/register", deps.AuthHandler.Register)
		auth.POST("/login", deps.AuthHandler.Login)
	}

	// Authenticated routes
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(deps.JWTSecret, deps.DB))
	{
		// Auth
		authed.GET("/auth/profile", deps.AuthHandler.Profile)
		authed.PUT("/auth/profile", deps.AuthHandler.UpdateProfile)
		authed.POST("/auth/change-password", deps.AuthHandler.ChangePassword)

		// Users
		authed.GET("/users", middleware.RequireRole(model.RoleScrumMaster), deps.UserHandler.ListUsers)
		authed.GET("/users/employees", middleware.RequireRole(model.RoleScrumMaster), deps.UserHandler.ListEmployees)

		// Projects
		projects := authed.Group("/projects")
		{
			projects.POST("", middleware.RequireRole(model.RoleScrumMaster), deps.ProjectHandler.Create)
			projects.GET("", deps.ProjectHandler.List)
			projects.GET("/:id", deps.ProjectHandler.Get)
			projects.PUT("/:id", middleware.RequireRole(model.RoleScrumMaster), deps.ProjectHandler.Update)
			projects.DELETE("/:id", middleware.RequireRole(model.RoleScrumMaster), deps.ProjectHandler.Delete)

			projects.GET("/:id/members", middleware.RequireRole(model.RoleScrumMaster), deps.ProjectHandler.Members)
			projects.POST("/:id/members", middleware.RequireRole(model.RoleScrumMaster), deps.ProjectHandler.AddMember)
			projects.DELETE("/:id/members/:user_id", middleware.RequireRole(model.RoleScrumMaster), deps.ProjectHandler.RemoveMember)

			projects.GET("/:id/messages", deps.ProjectHandler.Messages)
			projects.POST("/:id/messages", deps.ProjectHandler.PostMessage)

			projects.GET("/:id/analytics", middleware.RequireRole(model.RoleScrumMaster), deps.ProjectHandler.Analytics)
			projects.GET("/:id/member-performance", middleware.RequireRole(model.RoleScrumMaster), deps.ProjectHandler.MemberPerformance)
		}

		// Tasks
		tasks := authed.Group("/tasks")
		{
			// Static segments before the :id wildcard
			tasks.GET("/kanban", deps.TaskHandler.Kanban)
			tasks.GET("/analytics", deps.TaskHandler.Analytics)
			tasks.GET("/notifications", deps.TaskHandler.Notifications)

			tasks.POST("", middleware.RequireRole(model.RoleScrumMaster), deps.TaskHandler.Create)
			tasks.GET("", deps.TaskHandler.List)
			tasks.GET("/:id", deps.TaskHandler.Get)
			tasks.PUT("/:id", deps.TaskHandler.Update)
			tasks.PATCH("/:id/status", deps.TaskHandler.UpdateStatus)
			tasks.DELETE("/:id", middleware.RequireRole(model.RoleScrumMaster), deps.TaskHandler.Delete)
			tasks.PUT("/:id/assignees", middleware.RequireRole(model.RoleScrumMaster), deps.TaskHandler.SetAssignees)

			tasks.GET("/:id/comments", deps.TaskHandler.Comments)
			tasks.POST("/:id/comments", deps.TaskHandler.AddComment)
		}

		// Time tracking
		tracking := authed.Group("/time-tracking")
		{
			tracking.POST("/start", deps.TimeTrackingHandler.Start)
			tracking.POST("/stop/:id", deps.TimeTrackingHandler.Stop)
			tracking.GET("/active-session", deps.TimeTrackingHandler.Active)
			tracking.GET("/sessions", deps.TimeTrackingHandler.Sessions)
			tracking.GET("/analytics", deps.TimeTrackingHandler.Analytics)
		}
	}
}
