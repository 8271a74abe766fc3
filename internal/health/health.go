package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

func HealthHandler(c *gin.Context) {
	response := HealthResponse{Status: "ok"}
	c.JSON(http.StatusOK, response)
}

// ReadyHandler returns a handler that also checks database connectivity.
func ReadyHandler(db Pinger, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, HealthResponse{
				Status:   "degraded",
				Database: "unreachable",
			})
			return
		}

		c.JSON(http.StatusOK, HealthResponse{
			Status:   "ok",
			Database: "ok",
		})
	}
}
