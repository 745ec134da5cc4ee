package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmutuku/campushub/internal/config"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	redis Pinger
}

func NewHealthHandler(db, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Healthz is liveness: the process is up and serving.
func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz is readiness: the dependencies the API cannot serve without.
func (h *HealthHandler) Readyz(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	checks := gin.H{}
	ready := true

	if h.db != nil {
		if err := h.db.Ping(cctx); err != nil {
			checks["db"] = "down"
			ready = false
		} else {
			checks["db"] = "ok"
		}
	}

	// redis only carries the worker nudge; report it but do not fail
	// readiness over it
	if h.redis != nil {
		if err := h.redis.Ping(cctx); err != nil {
			checks["redis"] = "down"
		} else {
			checks["redis"] = "ok"
		}
	}

	if !ready {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": checks})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}
