package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports API liveness plus Postgres and Redis connectivity. Used by
// the container healthcheck and the storefront status badge; exposes no
// internals beyond up/down per dependency.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		postgresOK := false
		if sqlDB, err := db.DB(); err == nil && sqlDB.PingContext(ctx) == nil {
			postgresOK = true
		}
		redisOK := rdb.Ping(ctx).Err() == nil

		status := http.StatusOK
		if !postgresOK || !redisOK {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"servicio": "mundo-cartas-api",
			"ok":       status == http.StatusOK,
			"postgres": postgresOK,
			"redis":    redisOK,
		})
	}
}
