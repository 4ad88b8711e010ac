package controllers

import (
	"net/http"
	"time"

	"github.com/stocklane/stocklane-backend/api/responses"
	"github.com/stocklane/stocklane-backend/pkg/db"
	pkgerrors "github.com/stocklane/stocklane-backend/pkg/errors"
	"github.com/stocklane/stocklane-backend/pkg/redis"
)

const readinessTimeout = 2 * time.Second

// HealthController exposes liveness and readiness probes.
type HealthController struct {
	db    db.Pinger
	redis redis.Pinger
}

// NewHealthController wires the health probes.
func NewHealthController(database db.Pinger, cache redis.Pinger) *HealthController {
	return &HealthController{db: database, redis: cache}
}

// Live reports the process is up.
func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	responses.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the backing stores answer within the probe timeout.
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, readinessTimeout)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if c.db != nil {
		if err := c.db.Ping(ctx); err != nil {
			checks["database"] = err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}
	if c.redis != nil {
		if err := c.redis.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	if !healthy {
		responses.Error(w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(checks))
		return
	}
	responses.JSON(w, http.StatusOK, checks)
}
