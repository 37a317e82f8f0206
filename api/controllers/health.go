package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/ecopoints-io/ecopoints-backend/api/responses"
	"github.com/ecopoints-io/ecopoints-backend/pkg/config"
	pkgerrors "github.com/ecopoints-io/ecopoints-backend/pkg/errors"
	"github.com/ecopoints-io/ecopoints-backend/pkg/logger"
)

const envHeader = "X-EcoPoints-Env"

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies downstream dependencies before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, redis pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		failed := false

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				checks["db"] = "down"
				failed = true
			} else {
				checks["db"] = "up"
			}
		}
		if redis != nil {
			if err := redis.Ping(ctx); err != nil {
				checks["redis"] = "down"
				failed = true
			} else {
				checks["redis"] = "up"
			}
		}

		if failed {
			responses.WriteError(r.Context(), logg,
				w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
