// Package server contains the HTTP handlers for the marketplace API.
package server

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"time"

	"tradepost/internal/config"
	"tradepost/internal/middleware"
	"tradepost/internal/models"
	"tradepost/internal/notifications"
	"tradepost/internal/repository"
	"tradepost/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the already-initialized collaborators a Server needs.
type Deps struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Translator service.Translator
	Events     notifications.Publisher
}

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	db              *gorm.DB
	redis           *redis.Client
	app             *fiber.App
	promMiddleware  *fiberprometheus.FiberPrometheus
	userService     *service.UserService
	itemService     *service.ItemService
	purchaseService *service.PurchaseService
	subscriber      notifications.Subscriber
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
func NewServerWithDeps(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.DB == nil {
		return nil, errors.New("server: database is required")
	}
	if deps.Translator == nil {
		return nil, errors.New("server: translator is required")
	}

	userRepo := repository.NewUserRepository(deps.DB)
	itemRepo := repository.NewItemRepository(deps.DB)
	purchaseRepo := repository.NewPurchaseRepository(deps.DB)
	messageRepo := repository.NewMessageRepository(deps.DB)

	s := &Server{
		config:          cfg,
		db:              deps.DB,
		redis:           deps.Redis,
		promMiddleware:  middleware.InitMetrics("tradepost-api"),
		userService:     service.NewUserService(userRepo),
		itemService:     service.NewItemService(itemRepo, userRepo),
		purchaseService: service.NewPurchaseService(purchaseRepo, itemRepo, userRepo, messageRepo, deps.Translator, deps.Events),
	}
	if sub, ok := deps.Events.(notifications.Subscriber); ok {
		s.subscriber = sub
	}
	s.app = s.newApp()
	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Location, X-Request-ID, X-Trace-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/", s.Home)
	api.Get("/languages", s.GetLanguages)

	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	api.Get("/users", s.GetAllUsers)
	api.Get("/users/me", s.AuthRequired(), s.GetMyProfile)
	api.Put("/users/me", s.AuthRequired(), s.UpdateMyProfile)
	api.Get("/users/:id", s.GetUserProfile)

	api.Get("/items", s.GetItems)
	api.Post("/items", s.AuthRequired(), middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_item"), s.CreateItem)
	api.Get("/items/:id", s.GetItem)
	api.Post("/items/:id/purchase", s.AuthRequired(), s.StartPurchase)

	purchases := api.Group("/purchases", s.AuthRequired())
	purchases.Get("/", s.GetMyPurchases)
	purchases.Get("/:id", s.GetPurchase)
	purchases.Post("/:id/messages", middleware.RateLimit(
		s.redis, 30, time.Minute, "send_message"), s.SendMessage)
	purchases.Post("/:id/complete", s.CompletePurchase)
	purchases.Get("/:id/ws", s.PurchaseEventsUpgrade, s.PurchaseEventsSocket())
}

func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck pings the database and, when configured, Redis. Running
// without Redis is a supported mode and does not fail readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// newApp builds the Fiber application with middleware and routes.
func (s *Server) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "tradepost",
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(models.ErrorResponse{Error: fiberErr.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

func (s *Server) Start() error {
	log.Printf("Server starting on port %s...", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// App returns the application built by NewServerWithDeps.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.app == nil {
		return nil
	}
	return s.app.ShutdownWithContext(ctx)
}
