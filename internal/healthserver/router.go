package healthserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hookdeck/redisconnect/internal/redis"
)

const pingTimeout = 2 * time.Second

type healthStatus struct {
	Status string `json:"status"`
	Source string `json:"source"`
	Mode   string `json:"mode"`
	Error  string `json:"error,omitempty"`
}

// HealthHandler pings the resolved client on every request.
func HealthHandler(client redis.Cmdable, config *redis.RedisConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := healthStatus{
			Status: "ok",
			Source: string(config.Source),
			Mode:   config.Mode().String(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			status.Status = "unavailable"
			status.Error = err.Error()
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}

// NewRouter exposes the health check at /healthz.
func NewRouter(client redis.Cmdable, config *redis.RedisConfig, ginMode string) *gin.Engine {
	gin.SetMode(ginMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", HealthHandler(client, config))

	return r
}
