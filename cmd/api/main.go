package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-construction-inventory/internal/config"
	"go-construction-inventory/internal/handler"
	"go-construction-inventory/internal/lock"
	"go-construction-inventory/internal/middleware"
	"go-construction-inventory/internal/repository"
	"go-construction-inventory/internal/service"
	"go-construction-inventory/internal/ws"
	"go-construction-inventory/pkg/database"
	"go-construction-inventory/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logg := config.NewLogger(cfg.Log)
	jwt.Init(cfg.JWT)
	decimal.MarshalJSONWithoutQuotes = true

	// 2. Setup Database
	db, err := database.Connect(cfg.Database, logg)
	if err != nil {
		logg.Fatalf("connect database: %v", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		logg.Fatalf("migrate: %v", err)
	}

	// 3. Seed default privileges, roles, and admin user
	if err := repository.SeedDefaults(db, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, logg); err != nil {
		config.LogError(logg, "main", "main", "seed defaults", nil, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Locks and WebSocket Hub
	locker, closeLocker := lock.New(ctx, cfg.Redis, logg)
	defer closeLocker()

	wsHub := ws.NewHub(logg)
	go wsHub.Run(ctx)

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	projectRepo := repository.NewProjectRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	invRepo := repository.NewInventoryRepo(db)
	usageRepo := repository.NewWarehouseUsageRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	rabRepo := repository.NewRABRepo(db)
	scheduleRepo := repository.NewScheduleRepo(db)
	taskRepo := repository.NewTaskRepo(db)

	notifService := service.NewNotificationService(notificationRepo, userRepo, wsHub)
	txService := service.NewTransactionService(db, txRepo, invRepo, projectRepo, locker, notifService, wsHub, cfg.Inventory, logg)
	invService := service.NewInventoryService(db, invRepo, usageRepo, projectRepo, txRepo, locker, wsHub, cfg.Inventory, logg)
	projectService := service.NewProjectService(db, projectRepo, txRepo, invRepo, usageRepo, rabRepo, scheduleRepo, taskRepo, locker, notifService, wsHub, logg)
	reportService := service.NewReportService(txRepo, invRepo, usageRepo, projectRepo)
	dashService := service.NewDashboardService(invRepo, projectRepo)
	financialService := service.NewFinancialService(txRepo, projectRepo)
	authService := service.NewAuthService(userRepo, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)
	rabService := service.NewRABService(db, rabRepo, projectRepo, projectService, locker, notifService, logg)
	planningService := service.NewPlanningService(scheduleRepo, projectRepo, rabRepo)
	taskService := service.NewTaskService(db, taskRepo, notifService, logg)

	handlers := handler.Handlers{
		Auth:         handler.NewAuthHandler(authService, cfg.JWT.SessionCookie, logg),
		Transaction:  handler.NewTransactionHandler(txService, logg),
		Inventory:    handler.NewInventoryHandler(invService, reportService, logg),
		Project:      handler.NewProjectHandler(projectService, logg),
		Notification: handler.NewNotificationHandler(notifService, logg),
		Dashboard:    handler.NewDashboardHandler(dashService, financialService, logg),
		User:         handler.NewUserHandler(userService, logg),
		Role:         handler.NewRoleHandler(userService, logg),
		RAB:          handler.NewRABHandler(rabService, logg),
		Planning:     handler.NewPlanningHandler(planningService, logg),
		Task:         handler.NewTaskHandler(taskService, logg),
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.Server.AppName,
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowCredentials: cfg.Server.CORSOrigins != "*",
	}))

	// 7. Routes
	handler.Register(app.Group("/api"), handlers, middleware.RequireAuth(userRepo, cfg.JWT.SessionCookie))

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		select {
		case wsHub.Register <- c:
		case <-ctx.Done():
			return
		}
		defer func() {
			select {
			case wsHub.Unregister <- c:
			case <-ctx.Done():
			}
		}()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logg.Panic(err)
		}
	}()

	<-ctx.Done()

	logg.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		logg.Fatalf("Server forced to shutdown: %v", err)
	}

	logg.Info("Server exited")
}
