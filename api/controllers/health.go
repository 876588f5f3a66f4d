package controllers

import (
	"net/http"
	"time"

	"github.com/tablemesa/resto-backend/api/responses"
	"github.com/tablemesa/resto-backend/pkg/config"
	"github.com/tablemesa/resto-backend/pkg/db"
	pkgerrors "github.com/tablemesa/resto-backend/pkg/errors"
	"github.com/tablemesa/resto-backend/pkg/logger"
	"github.com/tablemesa/resto-backend/pkg/redis"
	"github.com/tablemesa/resto-backend/pkg/storage/gcs"
)

const readinessTimeout = 5 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Resto-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks every dependency the API cannot serve without. The GCS
// client may be nil for deployments without object storage.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, gcsP gcs.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Resto-Env", cfg.App.Env)

		ctx, cancel := pingContext(r, readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				checks["database"] = "down"
				healthy = false
			} else {
				checks["database"] = "ok"
			}
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				checks["redis"] = "down"
				healthy = false
			} else {
				checks["redis"] = "ok"
			}
		}
		if gcsP != nil {
			if err := gcsP.Ping(ctx); err != nil {
				checks["storage"] = "down"
				healthy = false
			} else {
				checks["storage"] = "ok"
			}
		}

		if !healthy {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
