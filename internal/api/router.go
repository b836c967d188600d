package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"pharma-elog-backend/internal/auth"
	"pharma-elog-backend/internal/mw"
	"pharma-elog-backend/internal/store"
)

// RouterOptions carries the request-handling knobs from configuration.
type RouterOptions struct {
	RateLimitPerSec float64
	RateBurst       int
	CacheTTL        time.Duration
	ClientIPHeader  string
}

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, h *Handler, tokens *auth.TokenManager, opts RouterOptions) *gin.Engine {
	r := gin.Default()

	if opts.RateLimitPerSec <= 0 {
		opts.RateLimitPerSec = 10
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 5
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}

	rateLimiter := mw.RateLimiter(rate.Limit(opts.RateLimitPerSec), opts.RateBurst, opts.ClientIPHeader)

	cacheStore := cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	caching := mw.Cache(cacheStore, opts.CacheTTL)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(rateLimiter)

	api.POST("/auth/login", h.Login)

	authed := api.Group("")
	authed.Use(mw.RequireSession(tokens, s))
	{
		authed.POST("/auth/logout", h.Logout)
		authed.GET("/auth/me", h.CurrentUser)

		authed.GET("/equipment", h.ListEquipment)
		authed.GET("/equipment/:id", h.GetEquipment)
		authed.POST("/equipment", h.CreateEquipment)
		authed.PATCH("/equipment/:id", h.UpdateEquipment)
		authed.DELETE("/equipment/:id", h.DeleteEquipment)

		authed.GET("/logs", h.ListLogs)
		authed.GET("/logs/:id", h.GetLog)
		authed.POST("/logs", h.CreateLog)
		authed.PATCH("/logs/:id", h.UpdateLog)
		authed.POST("/logs/:id/submit", h.SubmitLog)
		authed.POST("/logs/:id/approve", h.ApproveLog)

		authed.GET("/users", h.ListUsers)
		authed.POST("/users", h.CreateUser)
		authed.PATCH("/users/:id", h.UpdateUser)

		authed.GET("/pm-schedules", h.ListPMSchedules)
		authed.POST("/pm-schedules", h.CreatePMSchedule)
		authed.PATCH("/pm-schedules/:id", h.UpdatePMSchedule)

		authed.GET("/audit", GetAuditTrail(s))
		authed.GET("/dashboard/stats", caching, GetDashboardStats(s))
	}

	return r
}
