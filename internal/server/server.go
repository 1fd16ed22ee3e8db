// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"firenet/internal/auth"
	"firenet/internal/config"
	"firenet/internal/middleware"
	"firenet/internal/models"
	"firenet/internal/notifications"
	"firenet/internal/repository"
	"firenet/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// MsgUnauthorized is returned when a protected route is called without a
// usable bearer token.
const MsgUnauthorized = "Unauthorized"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	store          *repository.Store
	redis          *redis.Client
	nats           *nats.Conn
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	verifier       auth.Verifier
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	postService    *service.PostService
	userService    *service.UserService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// rdb and nc may be nil: without Redis events go straight to the local feed
// hub, without NATS they are not forwarded externally.
func NewServerWithDeps(cfg *config.Config, store *repository.Store, rdb *redis.Client, nc *nats.Conn) (*Server, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:         cfg,
		store:          store,
		redis:          rdb,
		nats:           nc,
		promMiddleware: middleware.InitMetrics("firenet-api"),
		shutdownCtx:    ctx,
		shutdownFn:     cancel,
		verifier:       auth.NewJWTVerifier(cfg.JWTSecret, store.Users, rdb),
		hub:            notifications.NewHub(),
	}

	events := notifications.Fanout{notifications.NewNatsPublisher(nc)}
	if rdb != nil {
		s.notifier = notifications.NewNotifier(rdb)
		events = append(events, s.notifier)
	} else {
		events = append(events, s.hub)
	}

	s.postService = service.NewPostService(store, events, cfg.CascadeLimit)
	s.userService = service.NewUserService(store.Users,
		auth.NewIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour))

	s.app = fiber.New(fiber.Config{
		AppName:      "firenet API",
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(s.app)
	s.SetupRoutes(s.app)

	return s, nil
}

// App exposes the configured Fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.Envelope{Success: false, Msg: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err.Error())
	return models.RespondWithError(c, fiber.StatusInternalServerError, err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and trace ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())
	if s.config.IsDevelopment() {
		app.Use(logger.New())
	}

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "firenet Metrics Dashboard",
	}))

	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/", s.AuthRequired(), s.CreatePost)
	// Define specific /:postId/:action routes BEFORE generic /:postId route
	posts.Post("/:postId/comment", s.AuthRequired(), s.CreateComment)
	posts.Get("/:postId/like", s.AuthRequired(), s.LikePost)
	posts.Get("/:postId/unlike", s.AuthRequired(), s.UnlikePost)
	posts.Get("/:postId", s.GetPost)
	posts.Delete("/:postId", s.AuthRequired(), s.DeletePost)

	user := api.Group("/user")
	user.Post("/signup", s.Signup)
	user.Post("/login", s.Login)
	user.Get("/", s.AuthRequired(), s.GetAuthenticatedUser)

	ws := api.Group("/ws", s.OptionalAuth())
	ws.Get("/feed", s.WebSocketFeedHandler())

	api.All("/*", func(c *fiber.Ctx) error {
		return models.RespondWithAppError(c, models.NewNotFoundError("Not found."))
	})

	if s.config.IsProduction() {
		s.setupStatic(app)
	}
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if err := s.store.Backend.Ping(ctx); err != nil {
		storeStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	natsStatus := "unavailable"
	if s.nats != nil {
		natsStatus = "healthy"
		if !s.nats.IsConnected() {
			natsStatus = "unhealthy"
		}
	}

	// Redis and NATS are optional; only a failing store takes the instance out.
	status := fiber.StatusOK
	overallStatus := "healthy"
	if storeStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus == "unhealthy" || natsStatus == "unhealthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"store": storeStatus,
			"redis": redisStatus,
			"nats":  natsStatus,
		},
		"driver": s.store.Backend.Name(),
		"time":   time.Now(),
	})
}

// AuthRequired returns the authentication middleware. It resolves the bearer
// token before any handler touches the store.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return models.RespondWithAppError(c, models.NewUnauthorizedError(MsgUnauthorized))
		}

		ident, err := s.verifier.Verify(c.UserContext(), token)
		if errors.Is(err, auth.ErrUnauthenticated) {
			return models.RespondWithAppError(c, models.NewUnauthorizedError(MsgUnauthorized))
		}
		if err != nil {
			return models.RespondWithAppError(c, models.NewInternalError(err))
		}

		setIdentity(c, ident)
		return c.Next()
	}
}

// OptionalAuth resolves a bearer token from the Authorization header or the
// token query parameter when one is present, and never rejects the request.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			token = c.Query("token")
		}
		if token != "" {
			if ident, err := s.verifier.Verify(c.UserContext(), token); err == nil {
				setIdentity(c, ident)
			}
		}
		return c.Next()
	}
}

// Start wires the feed hub and starts listening. It blocks until the
// listener stops.
func (s *Server) Start() error {
	if s.notifier != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start %s wiring: %v", s.hub.Name(), err)
			}
		}()
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop the wiring goroutine
	s.shutdownFn()

	var errs []error
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, err)
	}

	// Close WebSocket connections gracefully
	if err := s.hub.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	log.Println("Server shutdown complete")
	return errors.Join(errs...)
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
