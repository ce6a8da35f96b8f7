package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	bootstrap "github.com/phillip/frolic-api/bootstrap"
	utils "github.com/phillip/frolic-api/utils"
)

// RequireReady answers 503 until start-up has finished successfully.
func RequireReady(phase *bootstrap.Phase) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch phase.State() {
		case bootstrap.StateReady:
			c.Next()
		case bootstrap.StateFailed:
			utils.Abort(c, http.StatusServiceUnavailable, "service failed to start")
		default:
			c.Header("Retry-After", "5")
			utils.Abort(c, http.StatusServiceUnavailable, "service is starting, try again shortly")
		}
	}
}
