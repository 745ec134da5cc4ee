package worker

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler exposes liveness and readiness for the worker process.
func (w *Worker) HealthHandler() http.Handler {
	r := gin.New()

	r.Use(gin.Recovery())

	// liveness: process is up
	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// readiness: the claim loop is running; flips off during shutdown
	r.GET("/readyz", func(ctx *gin.Context) {
		w.readyMu.RLock()
		ready := w.ready
		w.readyMu.RUnlock()

		if !ready {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	return r
}
