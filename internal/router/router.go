package router

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/walkin-api/internal/handler"
	authh "github.com/jwalitptl/walkin-api/internal/handler/auth"
	healthh "github.com/jwalitptl/walkin-api/internal/handler/health"
	patienth "github.com/jwalitptl/walkin-api/internal/handler/patient"
	reporth "github.com/jwalitptl/walkin-api/internal/handler/report"
	"github.com/jwalitptl/walkin-api/internal/middleware"
	"github.com/jwalitptl/walkin-api/internal/report"
	"github.com/jwalitptl/walkin-api/pkg/metrics"
)

var registerValidators sync.Once

type Handlers struct {
	Auth    *authh.Handler
	Patient *patienth.Handler
	Report  *reporth.Handler
	Health  *healthh.Handler
}

type RouterConfig struct {
	Mode             string
	RequestTimeout   time.Duration
	MaxBodySize      int64
	RateLimitEnabled bool
	RateLimit        middleware.RateLimiterConfig
	CORSConfig       middleware.CORSConfig
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	logger   zerolog.Logger
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	handlers Handlers,
	m *metrics.Metrics,
	logger zerolog.Logger,
	config RouterConfig,
) (*Router, error) {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	var err error
	registerValidators.Do(func() { err = middleware.RegisterValidators() })
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.SetHTMLTemplate(report.PrintTemplate)
	engine.HandleMethodNotAllowed = true

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
	)
	if m != nil {
		engine.Use(middleware.Metrics(m))
	}
	engine.Use(
		middleware.SecurityHeaders(),
		middleware.CORS(config.CORSConfig),
	)
	if config.RateLimitEnabled {
		engine.Use(middleware.NewRateLimiter(config.RateLimit).RateLimit())
	}
	engine.Use(
		middleware.SizeLimit(config.MaxBodySize),
		middleware.Timeout(config.RequestTimeout),
		middleware.ErrorHandler(),
		middleware.Validation(),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("route not found"))
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, handler.NewErrorResponse("method not allowed"))
	})

	return &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		logger:   logger,
	}, nil
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(api)
	}

	public := api.Group("")
	protected := api.Group("")
	protected.Use(r.auth.Authenticate(), middleware.NoStore())
	pages := api.Group("")
	pages.Use(r.auth.RequirePage(), middleware.NoStore())

	r.handlers.Auth.RegisterRoutes(public, protected)

	r.handlers.Patient.RegisterFormRoutes(protected)
	r.handlers.Patient.RegisterRoutes(protected.Group("", middleware.Audit(r.logger, "patient")))
	r.handlers.Patient.RegisterPageRoutes(pages)

	r.handlers.Report.RegisterRoutes(protected.Group("", middleware.Audit(r.logger, "report")))
	r.handlers.Report.RegisterPageRoutes(pages)
}

// Engine returns the configured gin engine, usable as an http.Handler.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
