package router

import (
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/ratewell/backend/internal/handlers"
	"github.com/ratewell/backend/internal/middleware"
	"github.com/ratewell/backend/internal/models"
	"github.com/ratewell/backend/internal/realtime"
	"github.com/ratewell/backend/internal/repositories"
	"github.com/ratewell/backend/pkg/config"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, log zerolog.Logger) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Msg("request")
			return nil
		},
	}))
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(
	e *echo.Echo,
	cfg *config.Config,
	log zerolog.Logger,
	pgdb *gorm.DB,
	mgClient *mongo.Client,
	firebaseAuthClient *auth.Client,
	store *realtime.Store,
	bus *realtime.Bus,
) error {
	// AutoMigrate PostgreSQL models
	if err := pgdb.AutoMigrate(
		&models.User{},
		&models.Friendship{},
		&models.Reaction{},
	); err != nil {
		return err
	}
	log.Info().Msg("PostgreSQL auto-migrations completed")

	mgDB := mgClient.Database(cfg.MongoDatabase)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	friendshipRepo := repositories.NewPostgresFriendshipRepository(pgdb)
	reactionRepo := repositories.NewPostgresReactionRepository(pgdb)
	businessRepo := repositories.NewMongoBusinessRepository(mgDB)
	feedbackRepo := repositories.NewMongoFeedbackRepository(mgDB)

	streamHandler := handlers.NewStreamHandler(store, bus, cfg.KeepaliveInterval)

	// --- Unprotected routes ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)

	// The reaction stream is public: counts are visible without an account
	publicAPI := e.Group("/api/v1")
	streamHandler.RegisterPublicStreamRoutes(publicAPI)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	streamHandler.RegisterStreamRoutes(api)

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterUserRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(store)
	notificationHandler.RegisterNotificationRoutes(api)

	friendshipHandler := handlers.NewFriendshipHandler(friendshipRepo, userRepo, store)
	friendshipHandler.RegisterFriendshipRoutes(api)

	reactionHandler := handlers.NewReactionHandler(reactionRepo, feedbackRepo, bus)
	reactionHandler.RegisterReactionRoutes(api)

	businessHandler := handlers.NewBusinessHandler(businessRepo)
	businessHandler.RegisterBusinessRoutes(api)

	feedbackHandler := handlers.NewFeedbackHandler(feedbackRepo, businessRepo, userRepo)
	feedbackHandler.RegisterFeedbackRoutes(api)

	feedHandler := handlers.NewFeedHandler(feedbackRepo, friendshipRepo, userRepo)
	feedHandler.RegisterFeedRoutes(api)

	log.Info().Msg("All routes configured")
	return nil
}
