package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/mmutuku/campushub/internal/auth"
	"github.com/mmutuku/campushub/internal/cache"
	"github.com/mmutuku/campushub/internal/config"
	"github.com/mmutuku/campushub/internal/domain/user"
	"github.com/mmutuku/campushub/internal/http/handlers"
	"github.com/mmutuku/campushub/internal/http/middlewares"
	"github.com/mmutuku/campushub/internal/observability"
	"github.com/mmutuku/campushub/internal/queue/redisclient"
	"github.com/mmutuku/campushub/internal/repo/postgres"
)

// NewRouter wires every route and its guard chain. redisClient may be nil;
// the API degrades to poll-only mail dispatch without it.
func NewRouter(
	cfg config.Config,
	log *slog.Logger,
	pool *pgxpool.Pool,
	redisClient *redisclient.Client,
	prom *observability.Prom,
	reg *prometheus.Registry,
) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20)) // 1 MiB
	r.Use(otelgin.Middleware("campushub-api"))

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	// repositories

	usersRepo := postgres.NewUsersRepo(pool, prom)
	eventsRepo := postgres.NewEventsRepo(pool)
	mealsRepo := postgres.NewMealsRepo(pool)
	categoriesRepo := postgres.NewCategoriesRepo(pool)
	notificationsRepo := postgres.NewNotificationsRepo(pool)
	mailJobsRepo := postgres.NewMailJobsRepo(pool, prom)

	var nudger handlers.Nudger
	var redisPinger handlers.Pinger

	if redisClient != nil {
		nudger = redisClient
		redisPinger = redisClient
	}

	var dbPinger handlers.Pinger

	if pool != nil {
		dbPinger = pool
	}

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	listCache := cache.New(10 * time.Second)

	// handlers

	healthHandler := handlers.NewHealthHandler(dbPinger, redisPinger)
	authHandler := handlers.NewAuthHandler(usersRepo, mailJobsRepo, nudger, jwtManager, cfg, log)
	adminsHandler := handlers.NewAdminsHandler(usersRepo, mailJobsRepo, nudger, cfg, log)
	eventsHandler := handlers.NewEventsHandler(eventsRepo, notificationsRepo, listCache, log)
	mealsHandler := handlers.NewMealsHandler(mealsRepo, notificationsRepo, listCache, log)
	categoriesHandler := handlers.NewCategoriesHandler(categoriesRepo)
	notificationsHandler := handlers.NewNotificationsHandler(notificationsRepo)

	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)

	if reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	// public auth surface, rate limited by IP

	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)
	resetLimiter := middlewares.NewRateLimiter(5, 5*time.Minute)

	authGroup := r.Group("/auth", middlewares.RequireJSON())
	{
		authGroup.POST("/register", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Register)
		authGroup.POST("/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
		authGroup.POST("/forgot", resetLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.ForgotPassword)
		authGroup.POST("/reset", resetLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.ResetPassword)
	}

	// everything else requires a live session

	authMW := middlewares.NewAuthMiddleware(jwtManager, usersRepo)

	session := r.Group("/auth", authMW.RequireAuth())
	{
		session.GET("/me", authHandler.Me)
		session.PUT("/profile", middlewares.RequireJSON(), authHandler.UpdateProfile)
		session.POST("/logout", authHandler.Logout)
	}

	api := r.Group("/", authMW.RequireAuth())

	events := api.Group("/events")
	{
		events.GET("", eventsHandler.List)
		events.GET("/:id", eventsHandler.Get)

		manage := events.Group("", middlewares.RequireJSON(),
			authMW.RequireRole(user.RoleAdmin, user.RoleSuperAdmin, user.RoleEventManager))
		{
			manage.POST("", eventsHandler.Create)
			manage.PUT("/:id", eventsHandler.Update)
			manage.POST("/:id/cancel", eventsHandler.Cancel)
			manage.DELETE("/:id", eventsHandler.Delete)
		}
	}

	meals := api.Group("/meals")
	{
		meals.GET("", mealsHandler.List)
		meals.GET("/:id", mealsHandler.Get)

		manage := meals.Group("", middlewares.RequireJSON(),
			authMW.RequireRole(user.RoleAdmin, user.RoleSuperAdmin, user.RoleMealCoordinator))
		{
			manage.POST("", mealsHandler.Create)
			manage.PUT("/:id", mealsHandler.Update)
			manage.POST("/:id/cancel", mealsHandler.Cancel)
			manage.DELETE("/:id", mealsHandler.Delete)
		}
	}

	categories := api.Group("/categories")
	{
		categories.GET("", categoriesHandler.List)

		manage := categories.Group("", middlewares.RequireJSON(),
			authMW.RequireRole(user.RoleAdmin, user.RoleSuperAdmin))
		{
			manage.POST("", categoriesHandler.Create)
			manage.PUT("/:id", categoriesHandler.Update)
			manage.DELETE("/:id", categoriesHandler.Delete)
		}
	}

	admins := api.Group("/admins", authMW.RequireRole(user.RoleSuperAdmin))
	{
		admins.GET("", adminsHandler.List)
		admins.POST("", middlewares.RequireJSON(), adminsHandler.Create)
		admins.PATCH("/:id/activate", adminsHandler.Activate)
		admins.PATCH("/:id/deactivate", adminsHandler.Deactivate)
		admins.DELETE("/:id", adminsHandler.Delete)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("", notificationsHandler.List)
		notifications.PATCH("/:id/read", notificationsHandler.MarkRead)
	}

	return r
}
