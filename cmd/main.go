package main

import (
	"crm-service/internal/handler"
	"crm-service/internal/middleware"
	"crm-service/internal/model"
	"crm-service/internal/service"
	"crm-service/pkg/config"
	"crm-service/pkg/database"
	"crm-service/pkg/jwtutil"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting CRM service...", zap.String("environment", cfg.Server.Env))

	// Initialize database and run migrations
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(
		&model.Tenant{},
		&model.User{},
		&model.Role{},
		&model.Permission{},
		&model.RolePermission{},
		&model.UserRole{},
		&model.Menu{},
		&model.Branch{},
		&model.Group{},
		&model.Position{},
		&model.Customer{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed")

	// Initialize token signing
	jwtutil.Initialize(&cfg.JWT)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Wire services and handlers
	db := database.GetDB()
	principals := service.NewPrincipalService(db)
	generator := service.NewPermissionGenerator(db)
	menus := service.NewMenuService(db, generator)

	authHandler := handler.NewAuthHandler(principals)
	menuHandler := handler.NewMenuHandler(menus)
	roleHandler := handler.NewRoleHandler(db)
	userHandler := handler.NewUserHandler(db)
	tenantHandler := handler.NewTenantHandler(db)
	customerHandler := handler.NewCustomerHandler(db)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	// Authentication routes
	auth := e.Group("/auth")
	auth.Use(middleware.TenantContext(cfg.Tenancy.DefaultTenant))
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes - bearer token plus tenant scoping
	api := e.Group("/api")
	api.Use(middleware.Authenticate)
	api.Use(middleware.TenantContext(cfg.Tenancy.DefaultTenant))

	api.GET("/me", authHandler.Me)

	api.POST("/menus", menuHandler.Create)
	api.GET("/menus", menuHandler.List)
	api.GET("/menus/:id", menuHandler.Get)
	api.PUT("/menus/:id", menuHandler.Update)
	api.DELETE("/menus/:id", menuHandler.Delete)

	api.POST("/roles", roleHandler.Create)
	api.GET("/roles", roleHandler.List)
	api.POST("/roles/:id/permissions", roleHandler.GrantPermission)

	api.POST("/users", userHandler.Create)
	api.GET("/users", userHandler.List)
	api.GET("/users/:id", userHandler.Get)
	api.POST("/users/:id/roles", roleHandler.AssignRole)

	api.POST("/tenants", tenantHandler.Create)
	api.GET("/tenants", tenantHandler.List)
	api.GET("/tenants/:id", tenantHandler.Get)

	api.POST("/customers", customerHandler.Create)
	api.GET("/customers", customerHandler.List)
	api.GET("/customers/:id", customerHandler.Get)
	api.DELETE("/customers/:id", customerHandler.Delete)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
