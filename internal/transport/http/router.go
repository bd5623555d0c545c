// Package httptransport assembles the HTTP surface: middleware chain, route
// groups and their auth requirements. Handlers stay in their feature
// packages; this file only mounts them.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhandler "felicity/internal/admin/handler"
	eventhandler "felicity/internal/event/handler"
	forumhandler "felicity/internal/forum/handler"
	"felicity/internal/identity"
	"felicity/internal/platform/metrics"
	profilehandler "felicity/internal/profile/handler"
	registrationhandler "felicity/internal/registration/handler"
	teamhandler "felicity/internal/team/handler"
	"felicity/internal/transport/http/shared"
	adminmw "felicity/pkg/platform/middleware/admin"
	authmw "felicity/pkg/platform/middleware/auth"
	"felicity/pkg/platform/middleware/logging"
	"felicity/pkg/platform/middleware/metadata"
	"felicity/pkg/platform/middleware/recovery"
	"felicity/pkg/platform/middleware/request"
	"felicity/pkg/platform/middleware/tracing"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Resolver authmw.SessionResolver

	// Health reports backing-store connectivity for /healthz.
	Health func(ctx context.Context) error

	Profiles      *profilehandler.Handler
	Teams         *teamhandler.Handler
	Events        *eventhandler.Handler
	Registrations *registrationhandler.Handler
	Admin         *adminhandler.Handler
	Forum         *forumhandler.Handler
}

// NewRouter builds the full route tree.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(tracing.Trace)
	r.Use(logging.AccessLog(d.Logger))
	r.Use(recovery.Recover(d.Logger))
	r.Use(d.Metrics.Latency)

	r.Get("/healthz", d.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public catalog.
	d.Events.RegisterPublic(r)

	// Authenticated surface.
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(d.Resolver, d.Logger))

		d.Profiles.Register(r)
		d.Teams.Register(r)
		d.Registrations.Register(r)
		d.Forum.Register(r)

		// Staff routes.
		r.Group(func(r chi.Router) {
			r.Use(adminmw.RequireRole(d.Logger, identity.RoleAdmin, identity.RoleSuperAdmin))
			d.Events.RegisterAdmin(r)
			d.Forum.RegisterAdmin(r)
			r.Route("/admin", func(r chi.Router) {
				d.Admin.Register(r)

				r.Group(func(r chi.Router) {
					r.Use(adminmw.RequireRole(d.Logger, identity.RoleSuperAdmin))
					d.Admin.RegisterSuperAdmin(r)
				})
			})
		})
	})

	return r
}

func (d Deps) handleHealth(w http.ResponseWriter, r *http.Request) {
	if d.Health != nil {
		if err := d.Health(r.Context()); err != nil {
			d.Logger.ErrorContext(r.Context(), "health check failed", "error", err)
			shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
