package controllers

import (
	"context"
	"net/http"

	"go.uber.org/multierr"

	"github.com/propnest/pdc-engine/api/responses"
	"github.com/propnest/pdc-engine/pkg/config"
	pkgerrors "github.com/propnest/pdc-engine/pkg/errors"
	"github.com/propnest/pdc-engine/pkg/logger"
)

const envHeader = "X-PropNest-Env"

type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings each backing dependency and reports 503 when any fails.
func HealthReady(cfg *config.Config, logg *logger.Logger, dependencies map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		var combined error
		checks := map[string]string{}
		for name, dep := range dependencies {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				checks[name] = "down"
				combined = multierr.Append(combined, err)
				continue
			}
			checks[name] = "ok"
		}

		if combined != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "dependency unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

// ReadinessDeps assembles the dependency map for HealthReady.
func ReadinessDeps(db, redis, pubsub Pinger) map[string]Pinger {
	deps := map[string]Pinger{}
	if db != nil {
		deps["database"] = db
	}
	if redis != nil {
		deps["redis"] = redis
	}
	if pubsub != nil {
		deps["pubsub"] = pubsub
	}
	return deps
}
