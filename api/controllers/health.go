package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/calebmoran/tunewave-backend/api/responses"
	"github.com/calebmoran/tunewave-backend/pkg/config"
	pkgerrors "github.com/calebmoran/tunewave-backend/pkg/errors"
	"github.com/calebmoran/tunewave-backend/pkg/logger"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

const readinessTimeout = 5 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TuneWave-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings each wired dependency. Optional dependencies that were not
// configured are reported as skipped rather than failing readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TuneWave-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				checks[name] = "skipped"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = "down"
				healthy = false
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", name), "readiness check failed", err)
				}
				continue
			}
			checks[name] = "up"
		}

		if !healthy {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency not ready").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, checks)
	}
}

// ReadinessDeps assembles the dependency map for HealthReady. Nil entries are
// allowed for components disabled by configuration.
func ReadinessDeps(db, redis, gcs Pinger) map[string]Pinger {
	return map[string]Pinger{
		"postgres": db,
		"redis":    redis,
		"gcs":      gcs,
	}
}
