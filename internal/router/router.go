package router

import (
	"github.com/anonto42/blogsphere/backend/internal/cache"
	"github.com/anonto42/blogsphere/backend/internal/handlers"
	"github.com/anonto42/blogsphere/backend/internal/middleware"
	"github.com/anonto42/blogsphere/backend/internal/repositories"
	"github.com/anonto42/blogsphere/backend/internal/services"
	"github.com/anonto42/blogsphere/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
)

// Dependencies are the infrastructure pieces the routes are built on.
type Dependencies struct {
	Store    *repositories.Store
	Mongo    *mongo.Client // nil unless blogs are stored in mongo
	Cache    cache.Cache
	Mailer   services.Mailer
	Firebase services.TokenVerifier // nil disables firebase login
	OTP      services.OTPConfig
	Account  services.AccountConfig
}

// Services builds the service layer on top of deps.
func Services(deps Dependencies) *services.Container {
	store := deps.Store
	notifier := services.NewNotifier()
	filter := services.NewVisibilityFilter(store)
	otp := services.NewOTPService(store, deps.Mailer, deps.OTP)
	follows := services.NewFollowService(store, notifier, deps.Cache)
	blogs := services.NewBlogService(store, notifier, filter, deps.Cache)

	return &services.Container{
		Accounts:      services.NewAccountService(store, otp, deps.Cache, deps.Firebase, deps.Account),
		Emails:        services.NewEmailService(store, otp),
		Follows:       follows,
		Blogs:         blogs,
		Likes:         services.NewLikeService(store, notifier),
		Comments:      services.NewCommentService(store, notifier, filter),
		Profiles:      services.NewProfileService(store, filter, follows, blogs),
		Notifications: services.NewNotificationService(store),
	}
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) *services.Container {
	l := logger.L()
	svc := Services(deps)

	// Health check - always accessible
	health := handlers.NewHealthHandler(deps.Store.DB(), deps.Mongo)
	e.GET("/health", health.HealthCheck)

	authHandler := handlers.NewAuthHandler(svc.Accounts)
	userHandler := handlers.NewUserHandler(svc.Profiles)
	blogHandler := handlers.NewBlogHandler(svc.Blogs)
	feedHandler := handlers.NewFeedHandler(svc.Blogs)
	commentHandler := handlers.NewCommentHandler(svc.Comments)

	// --- Unprotected routes for authentication ---
	authHandler.RegisterAuthRoutes(e.Group(""))
	l.Debug().Msg("auth routes configured")

	// --- Protected routes (require authentication) ---
	api := e.Group("", middleware.JWTAuthMiddleware(svc.Accounts))
	authHandler.RegisterAccountRoutes(api)
	userHandler.RegisterProfileRoutes(api)
	blogHandler.RegisterBlogRoutes(api)
	commentHandler.RegisterCommentRoutes(api)
	handlers.NewFollowHandler(svc.Follows).RegisterFollowRoutes(api)
	handlers.NewLikeHandler(svc.Likes).RegisterLikeRoutes(api)
	handlers.NewEmailHandler(svc.Emails).RegisterEmailRoutes(api)
	handlers.NewNotificationHandler(svc.Notifications).RegisterNotificationRoutes(api)
	l.Debug().Msg("protected routes configured")

	// --- Routes open to anonymous visitors, user attached when present ---
	// Registered last so unmatched paths answer 404 rather than 401.
	public := e.Group("", middleware.OptionalJWTAuth(svc.Accounts))
	feedHandler.RegisterFeedRoutes(public)
	blogHandler.RegisterPublicRoutes(public)
	userHandler.RegisterPublicRoutes(public)
	commentHandler.RegisterPublicRoutes(public)
	l.Debug().Msg("public routes configured")

	l.Info().Int("routes", len(e.Routes())).Msg("all routes configured")
	return svc
}
