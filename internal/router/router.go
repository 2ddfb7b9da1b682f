package router

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/booking-api/internal/config"
	"github.com/jwalitptl/booking-api/internal/handler/admin"
	"github.com/jwalitptl/booking-api/internal/handler/doctor"
	"github.com/jwalitptl/booking-api/internal/handler/health"
	"github.com/jwalitptl/booking-api/internal/handler/prometheus"
	"github.com/jwalitptl/booking-api/internal/handler/user"
	"github.com/jwalitptl/booking-api/internal/middleware"
)

// listingMaxAge is the public cache lifetime of the approved doctor list.
const listingMaxAge = 60

type Handlers struct {
	User    *user.Handler
	Doctor  *doctor.Handler
	Admin   *admin.Handler
	Health  *health.Handler
	Metrics *prometheus.Handler
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	config   *config.Config
}

func NewRouter(cfg *config.Config, auth *middleware.AuthMiddleware, handlers Handlers) (*Router, error) {
	if err := middleware.RegisterValidators(); err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		config:   cfg,
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		cors.AllowOrigins = cfg.Server.AllowedOrigins
	}

	sizeLimit := middleware.DefaultSizeLimitConfig()
	if upload := int64(cfg.Upload.MaxFiles) * cfg.Upload.MaxFileSize; upload > 0 {
		// Multipart framing needs some room on top of the files themselves.
		sizeLimit.MaxUploadSize = upload + 1<<20
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		handlers.Metrics.Middleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: cfg.Server.RequestTimeout}),
		middleware.CORS(cors),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.SizeLimit(sizeLimit),
		middleware.NewIPRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window).RateLimit(),
	)

	engine.NoRoute(middleware.NoRoute())
	engine.NoMethod(middleware.NoMethod())

	return r, nil
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", r.handlers.Metrics.Handler())

	api := r.engine.Group("/api/v1")
	r.handlers.Health.RegisterRoutes(api)

	public := api.Group("")
	protected := api.Group("", r.auth.Authenticate(), middleware.Cache(middleware.NoStoreConfig()))

	r.handlers.User.RegisterRoutes(public, protected, middleware.Cache(middleware.PublicCacheConfig(listingMaxAge)))
	r.handlers.Doctor.RegisterRoutes(protected, r.auth.RequireApprovedDoctor())

	adminGroup := protected.Group("/admin", r.auth.RequireAdmin())
	r.handlers.Admin.RegisterRoutes(adminGroup)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
