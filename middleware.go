package main

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v9"

	"github.com/omarshanyour/nutrimind-backend/internal/metrics"

	log "github.com/sirupsen/logrus"
)

// RequestRateLimiter is satisfied by *redis_rate.Limiter.
type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// requestLogger logs every request at trace level once it completes.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Tracef(" ====> request [%s] path: [%s] status: %d took: %s [UA: %s]",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), c.Request.UserAgent())
	}
}

// requestMetrics counts requests by route and status and observes their duration.
func requestMetrics(m *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		m.GaugeRequests.Inc()
		defer m.GaugeRequests.Dec()
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.CounterRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HistRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// panicRecovery turns a handler panic into a 500 envelope.
func panicRecovery(m *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("http: panic serving %s: %v\n%s", c.Request.URL.Path, r, debug.Stack())
				if m != nil {
					m.CounterHandleRequestPanic.Inc()
				}
				if !c.Writer.Written() {
					apiError(c, http.StatusInternalServerError, msgServerError)
				}
				c.Abort()
			}
		}()

		c.Next()
	}
}

// rateLimit caps requests per session on routeName. It is a no-op without a
// limiter or a positive limit, and lets requests through while the limiter
// itself is failing.
func (h *Handler) rateLimit(routeName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.limiter == nil || h.chatRateLimit <= 0 {
			c.Next()
			return
		}

		key := routeName + ":" + sessionID(c)
		res, err := h.limiter.Allow(c.Request.Context(), key, redis_rate.PerMinute(h.chatRateLimit))
		if err != nil {
			log.Errorf("[rate-limit] %s, letting request through: %s", key, err)
			c.Next()
			return
		}

		if res.Allowed > 0 {
			c.Next()
			return
		}

		if h.metrics != nil {
			h.metrics.CounterRateLimited.Inc()
		}
		retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		apiError(c, http.StatusTooManyRequests, fmt.Sprintf("Slow down a little. Try again in %d seconds.", retryAfter))
		c.Abort()
	}
}
