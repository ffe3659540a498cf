package api

import (
	"alcyxob/fitcoach/internal/metrics"
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"
)

type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit allows allowedPerMin requests per minute for each client IP on
// routeName.
func RateLimit(rateLimiter RequestRateLimiter, routeName string, allowedPerMin int, metricsManager *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := rateLimiter.Allow(
			c.Request.Context(),
			routeName+":"+c.ClientIP(),
			redis_rate.PerMinute(allowedPerMin),
		)
		if err != nil {
			log.Errorf("rate limit %s: %s", routeName, err)
			abortWithError(c, http.StatusInternalServerError, "rate limit internal error")
			return
		}

		if res.Allowed > 0 {
			c.Next()
			return
		}

		if metricsManager != nil {
			metricsManager.CounterRateLimitedHits.Inc()
		}
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
		abortWithError(c, http.StatusTooManyRequests, fmt.Sprintf("retry after %f seconds", res.RetryAfter.Seconds()))
	}
}
