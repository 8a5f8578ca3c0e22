package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ppdb/internal/platform/metrics"
	"ppdb/internal/platform/middleware"
	id "ppdb/pkg/domain"
)

// Deps carries everything the router needs. Handlers are built by the caller
// so tests can wire mocks.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Tokens         middleware.TokenValidator
	Auth           *AuthHandler
	Applicant      *ApplicantHandler
	Admin          *AdminHandler
	RequestTimeout time.Duration

	// Readiness is polled by /healthz. Nil means always ready.
	Readiness func(ctx context.Context) error
}

// NewRouter wires the middleware chain and all route groups: public auth,
// applicant self-service (PESERTA) and the staff review surface (ADMIN).
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientInfo)
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.Latency(deps.Metrics))
	}
	if deps.RequestTimeout > 0 {
		r.Use(middleware.Timeout(deps.RequestTimeout))
	}

	r.Get("/healthz", handleHealth(deps.Readiness))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(pub chi.Router) {
		pub.Use(middleware.ContentTypeJSON)
		deps.Auth.Register(pub)
	})

	r.Group(func(priv chi.Router) {
		priv.Use(middleware.ContentTypeJSON)
		priv.Use(middleware.RequireAuth(deps.Tokens, deps.Logger))

		priv.Group(func(peserta chi.Router) {
			peserta.Use(middleware.RequireRole(id.RolePeserta))
			deps.Applicant.Register(peserta)
		})

		priv.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireRole(id.RoleAdmin))
			deps.Admin.Register(admin)
		})
	})

	return r
}

func handleHealth(readiness func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if readiness != nil {
			if err := readiness(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
