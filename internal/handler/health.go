package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pablini31/papelria/internal/infra"
	"github.com/pablini31/papelria/internal/worker"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Only the database decides the status code; Redis is optional.
func Health(db *gorm.DB, rdb *redis.Client, cb *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		body := gin.H{"db": dbStatus}

		switch {
		case rdb == nil:
			body["redis"] = "disabled"
		case rdb.Ping(ctx).Err() != nil:
			body["redis"] = "error"
		default:
			body["redis"] = "connected"
			if n, err := worker.DLQLength(ctx, rdb, worker.QueueEmail); err == nil {
				body["dlq_email"] = n
			}
		}

		if cb != nil {
			body["datastore_circuit"] = cb.State().String()
		}

		status := http.StatusOK
		if dbStatus != "connected" {
			status = http.StatusServiceUnavailable
		}
		body["ok"] = status == http.StatusOK
		c.JSON(status, body)
	}
}
