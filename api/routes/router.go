package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/propnest/pdc-engine/api/controllers"
	pdcscontrollers "github.com/propnest/pdc-engine/api/controllers/pdcs"
	"github.com/propnest/pdc-engine/api/middleware"
	"github.com/propnest/pdc-engine/internal/notifications"
	"github.com/propnest/pdc-engine/internal/pdc"
	"github.com/propnest/pdc-engine/pkg/config"
	"github.com/propnest/pdc-engine/pkg/logger"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config               *config.Config
	Logger               *logger.Logger
	PDCService           pdc.Service
	NotificationsService notifications.Service
	Readiness            map[string]controllers.Pinger
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/pdcs", func(r chi.Router) {
			r.Get("/", pdcscontrollers.List(deps.PDCService, logg))
			r.Get("/dashboard", pdcscontrollers.Dashboard(deps.PDCService, logg))
			r.Get("/withdrawals", pdcscontrollers.Withdrawals(deps.PDCService, logg))
			r.Get("/{pdcId}", pdcscontrollers.Get(deps.PDCService, logg))
			r.Get("/{pdcId}/chain", pdcscontrollers.Chain(deps.PDCService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireMutator(logg))
				r.Post("/", pdcscontrollers.Create(deps.PDCService, logg))
				r.Post("/bulk", pdcscontrollers.BulkCreate(deps.PDCService, logg))
				r.Patch("/{pdcId}/deposit", pdcscontrollers.Deposit(deps.PDCService, logg))
				r.Patch("/{pdcId}/clear", pdcscontrollers.Clear(deps.PDCService, logg))
				r.Patch("/{pdcId}/bounce", pdcscontrollers.Bounce(deps.PDCService, logg))
				r.Patch("/{pdcId}/withdraw", pdcscontrollers.Withdraw(deps.PDCService, logg))
				r.Patch("/{pdcId}/cancel", pdcscontrollers.Cancel(deps.PDCService, logg))
				r.Post("/{pdcId}/replace", pdcscontrollers.Replace(deps.PDCService, logg))
			})
		})

		r.Route("/tenants/{tenantId}", func(r chi.Router) {
			r.Get("/pdcs", pdcscontrollers.TenantHistory(deps.PDCService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.NotificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.NotificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.NotificationsService, logg))
		})
	})

	return r
}
