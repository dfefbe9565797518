package api

import (
	"time"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the handler's routes. limiter may be nil.
func NewRouter(h *Handler, limiter *LimiterStore) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger))

	r.GET("/healthz", h.Health)

	v1 := r.Group("/v1", requireUser())
	{
		v1.POST("/accounts", rateLimit(limiter), h.Connect)
		v1.POST("/accounts/:id/sync", rateLimit(limiter), h.Sync)
		v1.GET("/accounts/:id", h.Fetch)
		v1.DELETE("/accounts/:id", h.Disconnect)
	}

	return r
}

// NewLimiter returns nil when perMinute is not positive.
func NewLimiter(perMinute int) *LimiterStore {
	if perMinute <= 0 {
		return nil
	}
	return NewLimiterStore(perMinute, 10*time.Minute)
}
