package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	bootstrap "github.com/phillip/frolic-api/bootstrap"
	utils "github.com/phillip/frolic-api/utils"
)

// Ping answers as soon as the process is up, whatever the start-up state.
func Ping(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.OK(c, http.StatusOK, gin.H{"state": deps.Phase.State()}, "pong")
	}
}

// Health reports start-up state and database reachability. Anything short of
// ready with a reachable database is a 503.
func Health(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := deps.Phase.State()
		body := gin.H{"state": state, "database": "unknown"}
		if err := deps.Phase.Err(); err != nil {
			body["error"] = err.Error()
		}

		healthy := state == bootstrap.StateReady
		if deps.DBPing != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.DBPing(ctx); err != nil {
				deps.Log.Warnw("health: database ping failed", "err", err)
				body["database"] = "down"
				healthy = false
			} else {
				body["database"] = "up"
			}
		}

		if !healthy {
			c.JSON(http.StatusServiceUnavailable, utils.Envelope{Success: false, Data: body, Message: "unhealthy"})
			return
		}
		utils.OK(c, http.StatusOK, body, "healthy")
	}
}
