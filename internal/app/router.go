package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/pennyledger/pennyledger/internal/auth"
	"github.com/pennyledger/pennyledger/internal/catalog"
	"github.com/pennyledger/pennyledger/internal/observability"
	"github.com/pennyledger/pennyledger/internal/spending/categories"
	"github.com/pennyledger/pennyledger/internal/spending/expenses"
	"github.com/pennyledger/pennyledger/internal/spending/records"
	"github.com/pennyledger/pennyledger/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger                *slog.Logger
	Config                *Config
	AuthHandler           *auth.Handler
	AuthMiddleware        auth.Middleware
	CatalogHandler        *catalog.Handler
	UserCategoriesHandler *categories.Handler
	UserExpensesHandler   *expenses.Handler
	RecordsHandler        *records.Handler
	JobHandler            *jobs.Handler
	Metrics               *observability.Metrics
}

// NewRouter constructs the chi.Router. Everything under /api except login
// sits behind the token gate.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	r.Route("/api", func(r chi.Router) {
		// Login gets a tighter per-IP budget than the global limiter.
		r.Group(func(r chi.Router) {
			r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
			r.Route("/auth", params.AuthHandler.MountRoutes)
		})

		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireToken)
			params.CatalogHandler.MountRoutes(r)
			r.Route("/user_categories", params.UserCategoriesHandler.MountRoutes)
			r.Route("/user_expenses", params.UserExpensesHandler.MountRoutes)
			r.Route("/records", params.RecordsHandler.MountRoutes)
		})
	})

	return r
}
