// Package server contains the HTTP and WebSocket handlers for the API.
package server

import (
	"context"
	"log/slog"
	"time"

	_ "brewlog/docs" // swagger docs
	"brewlog/internal/cache"
	"brewlog/internal/config"
	"brewlog/internal/featureflags"
	"brewlog/internal/middleware"
	"brewlog/internal/models"
	"brewlog/internal/notifications"
	"brewlog/internal/repository"
	"brewlog/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	cache          *cache.Cache
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	auth           *middleware.Authenticator
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	featureFlags   *featureflags.Manager

	postService         *service.PostService
	commentService      *service.CommentService
	friendService       *service.FriendService
	profileService      *service.ProfileService
	statsService        *service.StatsService
	notificationService *service.NotificationService
}

// NewServer creates a Server from already-initialized dependencies. c may be
// nil or hold no client: notifications are then delivered in-process and
// caching, rate limiting and token revocation are skipped.
func NewServer(cfg *config.Config, db *gorm.DB, c *cache.Cache) *Server {
	redisClient := c.Client()
	postRepo := repository.NewPostRepository(db, c)
	friendRepo := repository.NewFriendRepository(db)
	profileRepo := repository.NewProfileRepository(db, c)

	s := &Server{
		config:         cfg,
		db:             db,
		cache:          c,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("brewlog-api"),
		auth:           middleware.NewAuthenticator(cfg, redisClient),
		notifier:       notifications.NewNotifier(redisClient),
		hub:            notifications.NewHub(),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	s.notificationService = service.NewNotificationService(repository.NewNotificationRepository(db), s.notifier)
	s.friendService = service.NewFriendService(friendRepo, profileRepo, s.notificationService, c)
	s.postService = service.NewPostService(postRepo, repository.NewLikeRepository(db), friendRepo, profileRepo,
		s.notificationService, s.featureFlags, c, cfg.FeedDefaultLimit)
	s.commentService = service.NewCommentService(repository.NewCommentRepository(db), postRepo, friendRepo, s.notificationService, c)
	s.profileService = service.NewProfileService(profileRepo, s.friendService)
	s.statsService = service.NewStatsService(repository.NewStatsRepository(db), friendRepo, profileRepo, c)

	return s
}

// App builds the Fiber application with middleware and routes. It is built
// once; later calls return the same app.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "brewlog API",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// errorHandler converts errors that escape a handler into the standard
// error body.
func errorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	return respondError(c, err)
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

	// CORS runs before anything that can short-circuit so error responses
	// still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Mutation-ID, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
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
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{Title: "brewlog metrics"}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	required := s.auth.Required()
	optional := s.auth.Optional()

	posts := api.Group("/posts")
	posts.Get("/", optional, s.ListPosts)
	posts.Post("/", required, middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", required, s.LikePost)
	posts.Delete("/:id/like", required, s.UnlikePost)
	posts.Get("/:id", optional, s.GetPost)
	posts.Put("/:id", required, s.UpdatePost)
	posts.Delete("/:id", required, s.DeletePost)

	comments := api.Group("/comments")
	comments.Get("/", optional, s.ListComments)
	comments.Post("/", required, middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	comments.Put("/", required, s.UpdateComment)
	comments.Delete("/", required, s.DeleteComment)

	friends := api.Group("/friends", required)
	friends.Post("/request", middleware.RateLimit(s.redis, 5, 5*time.Minute, "friend_request"), s.SendFriendRequest)
	friends.Post("/accept", s.AcceptFriendRequest)
	friends.Delete("/remove", s.RemoveFriend)
	friends.Get("/list", s.ListFriends)
	friends.Get("/search", middleware.RateLimit(s.redis, 30, time.Minute, "friend_search"), s.SearchFriends)

	api.Get("/stats", required, s.GetStats)

	profiles := api.Group("/profiles")
	profiles.Post("/", required, s.CreateProfile)
	profiles.Get("/me", required, s.GetMyProfile)
	profiles.Put("/me", required, s.UpdateMyProfile)
	profiles.Get("/:username", optional, s.GetProfile)

	notifs := api.Group("/notifications", required)
	notifs.Get("/", s.ListNotifications)
	notifs.Get("/unread-count", s.UnreadCount)
	notifs.Post("/read-all", s.MarkAllNotificationsRead)
	notifs.Post("/:id/read", s.MarkNotificationRead)

	api.Get("/feature-flags", optional, s.GetFeatureFlags)

	api.Post("/ws/ticket", required, s.IssueWSTicket)
	api.Get("/ws", s.auth.RequiredOrTicket(), s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the database and Redis answer.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
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
	overall := "healthy"
	switch {
	case dbStatus != "healthy" || redisStatus == "unhealthy":
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	case redisStatus == "unavailable":
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// GetFeatureFlags returns configured feature flags and their state for the
// caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}

// Start wires the notification hub and serves HTTP until the app is shut
// down.
func (s *Server) Start() error {
	s.shutdownCtx, s.shutdownFn = context.WithCancel(context.Background())
	app := s.App()

	if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
		middleware.Logger.Error("failed to wire notification hub", slog.String("error", err.Error()))
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down notification hub", slog.String("error", err.Error()))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.cache.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
