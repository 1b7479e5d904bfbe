package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omarshanyour/nutrimind-backend/internal/coach"
	"github.com/omarshanyour/nutrimind-backend/internal/feed"
	"github.com/omarshanyour/nutrimind-backend/internal/meals"
	"github.com/omarshanyour/nutrimind-backend/internal/metrics"
	"github.com/omarshanyour/nutrimind-backend/internal/tracker"
)

// Handler holds shared dependencies for all route handlers.
// coach and estimator are nil when no AI credential is configured.
type Handler struct {
	tracker   *tracker.Service
	coach     *coach.Coach
	estimator *meals.Estimator
	feeds     *feed.Client
	metrics   *metrics.Manager

	limiter       RequestRateLimiter // nil disables chat rate limiting
	chatRateLimit int                // allowed chat requests per minute and session

	sessionCookie string
	sessionMaxAge time.Duration
}

/* ─── Response envelope ──────────────────────────────────────────────── */

const (
	msgMisconfigured = "Server misconfigured."
	msgServerError   = "NutriMind server error. Please try again in a moment."
	msgInvalidBody   = "invalid request body"
)

// apiError returns a consistent JSON error response: {"ok": false, "message": "..."}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"ok": false, "message": message})
}

// apiOK writes payload with ok=true and status 200.
func apiOK(c *gin.Context, payload gin.H) {
	if payload == nil {
		payload = gin.H{}
	}
	payload["ok"] = true
	c.JSON(http.StatusOK, payload)
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// newRouter builds the gin engine with the ambient middleware and all routes.
func (h *Handler) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(), requestMetrics(h.metrics), panicRecovery(h.metrics))
	h.registerRoutes(router)
	return router
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Health checks need no session
	router.GET("/api", h.health)
	router.GET("/coach/api", h.quickCoachHealth)

	// Everything else is owned by the anonymous session
	s := router.Group("", h.sessionMiddleware())
	s.POST("/api", h.rateLimit("chat"), h.coachChat)
	s.POST("/coach/api", h.rateLimit("quick-coach"), h.quickCoach)
	s.POST("/api/meal", h.estimateMealText)
	s.POST("/api/meal-photo", h.estimateMealPhoto)
	s.GET("/api/news", h.getNews)
	s.GET("/api/deals", h.getDeals)
	s.GET("/api/baseline", h.getBaseline)
	s.PUT("/api/baseline", h.putBaseline)
	s.GET("/api/log", h.getDailyLog)
	s.POST("/api/log/meal", h.logMeal)
	s.POST("/api/log/water", h.logWater)
	s.GET("/api/weight", h.getWeightLog)
	s.POST("/api/weight", h.logWeight)
	s.GET("/api/dashboard", h.getDashboard)
}

// health handles GET /api.
func (h *Handler) health(c *gin.Context) {
	apiOK(c, gin.H{"message": "NutriMind backend is online"})
}

// observeLLM records one call to the text-generation provider.
func (h *Handler) observeLLM(kind string, start time.Time, err error) {
	if h.metrics == nil {
		return
	}
	h.metrics.CounterLLMCalls.WithLabelValues(kind, metrics.Outcome(err)).Inc()
	h.metrics.HistLLMDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// observeFeed records one feed fetch.
func (h *Handler) observeFeed(name string, err error) {
	if h.metrics == nil {
		return
	}
	h.metrics.CounterFeedFetches.WithLabelValues(name, metrics.Outcome(err)).Inc()
}
