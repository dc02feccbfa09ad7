package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/patient-portal/internal/config"
	"github.com/jwalitptl/patient-portal/internal/handler"
	authHandler "github.com/jwalitptl/patient-portal/internal/handler/auth"
	portalHandler "github.com/jwalitptl/patient-portal/internal/handler/portal"
	"github.com/jwalitptl/patient-portal/internal/middleware"
	"github.com/jwalitptl/patient-portal/internal/session"
	"github.com/jwalitptl/patient-portal/pkg/metrics"
)

type Router struct {
	engine     *gin.Engine
	sessions   *middleware.SessionMiddleware
	sessionMgr *session.Manager
	authH      *authHandler.Handler
	portalH    *portalHandler.Handler
	h          *handler.Handler
	metrics    *metrics.Metrics
}

func NewRouter(
	cfg *config.Config,
	sessions *middleware.SessionMiddleware,
	sessionMgr *session.Manager,
	authH *authHandler.Handler,
	portalH *portalHandler.Handler,
	h *handler.Handler,
	m *metrics.Metrics,
) *Router {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.LoadHTMLGlob("web/templates/*.html")
	engine.Static("/static", "web/static")

	r := &Router{
		engine:     engine,
		sessions:   sessions,
		sessionMgr: sessionMgr,
		authH:      authH,
		portalH:    portalH,
		h:          h,
		metrics:    m,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		r.metricsMiddleware(),
	)

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit)
		engine.Use(limiter.RateLimit())
	}

	engine.Use(sessions.Load())

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/health", r.h.HealthCheck)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.authH.RegisterRoutes(r.engine)

	protected := r.engine.Group("")
	protected.Use(r.sessions.RequireAuth())
	protected.GET("/logout", r.authH.Logout)
	r.portalH.RegisterRoutes(protected)

	r.engine.NoRoute(func(c *gin.Context) {
		handler.Render(c, r.sessionMgr, http.StatusNotFound, "404.html", nil)
	})
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		r.metrics.RequestTotal.WithLabelValues(method, path, status).Inc()
		r.metrics.RequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		if c.Writer.Status() >= http.StatusBadRequest {
			r.metrics.ErrorTotal.WithLabelValues(method, path, status).Inc()
		}
	}
}
