package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"motortax-web/internal/config"
	"motortax-web/internal/handler"
	"motortax-web/internal/middleware"
	"motortax-web/internal/repository"
	"motortax-web/internal/service"
)

func SetupAPIRoutes(
	router fiber.Router,
	db *sqlx.DB,
	redis *redis.Client,
	cfg *config.Config,
) {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	taxpayerRepo := repository.NewTaxpayerRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	declarationRepo := repository.NewDeclarationRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg)
	excelService := service.NewExcelService()
	registryService := service.NewRegistryService(
		cfg.RPOBaseURL,
		cfg.RUZBaseURL,
		cfg.RegistryTimeout,
		redis,
		cfg.RegistryCacheTTL,
	)

	// Initialize Asynq client (optional - only if Redis is available)
	var asynqClient *asynq.Client
	if redis != nil {
		asynqClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.AsynqRedisAddr,
			Password: cfg.AsynqRedisPassword,
			DB:       cfg.AsynqRedisDB,
		})
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	taxpayerHandler := handler.NewTaxpayerHandler(taxpayerRepo, registryService)
	vehicleHandler := handler.NewVehicleHandler(vehicleRepo, taxpayerRepo, excelService, cfg)
	declarationHandler := handler.NewDeclarationHandler(
		declarationRepo,
		taxpayerRepo,
		vehicleRepo,
		excelService,
		asynqClient,
		redis,
		cfg,
	)

	// Public routes
	auth := router.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/register", authHandler.Register)
	auth.Post("/logout", authHandler.Logout)

	// Protected routes
	protected := router.Group("", middleware.AuthMiddleware(cfg))

	// Auth routes
	protected.Get("/auth/me", authHandler.Me)

	// Taxpayer routes
	taxpayers := protected.Group("/taxpayers")
	taxpayers.Get("/", taxpayerHandler.List)
	taxpayers.Post("/", taxpayerHandler.Create)
	taxpayers.Get("/:id", taxpayerHandler.Get)
	taxpayers.Put("/:id", taxpayerHandler.Update)
	taxpayers.Delete("/:id", taxpayerHandler.Delete)
	taxpayers.Post("/:id/verify", taxpayerHandler.Verify)

	// Vehicle routes, scoped by taxpayer for listing and creation
	taxpayers.Get("/:taxpayerId/vehicles", vehicleHandler.List)
	taxpayers.Post("/:taxpayerId/vehicles", vehicleHandler.Create)
	taxpayers.Post("/:taxpayerId/vehicles/import", vehicleHandler.Import)

	vehicles := protected.Group("/vehicles")
	vehicles.Post("/calculate", vehicleHandler.Calculate)
	vehicles.Get("/template", vehicleHandler.Template)
	vehicles.Get("/error-report/:filename", vehicleHandler.ErrorReport)
	vehicles.Get("/:id", vehicleHandler.Get)
	vehicles.Put("/:id", vehicleHandler.Update)
	vehicles.Delete("/:id", vehicleHandler.Delete)

	// Declaration routes
	declarations := protected.Group("/declarations")
	declarations.Post("/calculate", declarationHandler.Calculate)
	declarations.Post("/build", declarationHandler.Build)
	declarations.Get("/", declarationHandler.List)
	declarations.Get("/:id", declarationHandler.Get)
	declarations.Get("/:id/status", declarationHandler.Status)
	declarations.Get("/:id/xml", declarationHandler.DownloadXML)
	declarations.Get("/:id/summary", declarationHandler.ExportSummary)
}
