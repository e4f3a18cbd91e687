package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/config"
	"github.com/taskflow/backend/internal/handler"
	"github.com/taskflow/backend/internal/logger"
	"github.com/taskflow/backend/internal/model"
	"github.com/taskflow/backend/internal/router"
	"github.com/taskflow/backend/internal/service"
)

func main() {
	// Load config
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Logger
	lg, err := logger.New(logger.ParseLevel(cfg.Log.Level))
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	logger.SetDefault(lg)

	// Database
	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("connect database: %v", err)
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.ProjectMember{},
		&model.ProjectMessage{},
		&model.Task{},
		&model.TaskAssignment{},
		&model.TaskComment{},
		&model.TaskActivity{},
		&model.TimeSession{},
	); err != nil {
		logger.Fatal("auto migrate: %v", err)
	}

	// Redis (optional: empty addr disables the time-tracking start lock)
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	// Services
	membershipResolver := service.NewMembershipResolver(db)
	authService := service.NewAuthService(db, cfg.JWT.Secret, cfg.JWT.ExpireHours)
	projectService := service.NewProjectService(db, membershipResolver)
	messageService := service.NewMessageService(db, projectService)
	taskService := service.NewTaskService(db)
	analyticsService := service.NewAnalyticsService(db, membershipResolver)
	notificationFeed := service.NewNotificationFeed(db)
	timeTracker := service.NewTimeTracker(db, rdb)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService)
	projectHandler := handler.NewProjectHandler(projectService, messageService, analyticsService)
	taskHandler := handler.NewTaskHandler(taskService, analyticsService, notificationFeed)
	timeTrackingHandler := handler.NewTimeTrackingHandler(timeTracker)

	// Gin engine
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// Setup routes
	router.Setup(r, router.Deps{
		DB:                  db,
		JWTSecret:           cfg.JWT.Secret,
		AuthHandler:         authHandler,
		UserHandler:         userHandler,
		ProjectHandler:      projectHandler,
		TaskHandler:         taskHandler,
		TimeTrackingHandler: timeTrackingHandler,
	})

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatal("server run: %v", err)
	}
}
