package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/praxis-hq/praxis/internal/analytics"
	"github.com/praxis-hq/praxis/internal/assignment"
	"github.com/praxis-hq/praxis/internal/auth"
	"github.com/praxis-hq/praxis/internal/feedback"
	"github.com/praxis-hq/praxis/internal/observability"
	"github.com/praxis-hq/praxis/internal/session"
	"github.com/praxis-hq/praxis/internal/training"
	"github.com/praxis-hq/praxis/internal/users"
	"github.com/praxis-hq/praxis/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	IdentityMiddleware func(http.Handler) http.Handler
	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	TrainingHandler    *training.Handler
	SessionHandler     *session.Handler
	AssignmentHandler  *assignment.Handler
	FeedbackHandler    *feedback.Handler
	AnalyticsHandler   *analytics.Handler
	JobsHandler        *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Praxis defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:   params.Logger,
		Config:   params.Config,
		Identity: params.IdentityMiddleware,
		Metrics:  params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/trainings", params.TrainingHandler.MountRoutes)
		r.Route("/sessions", params.SessionHandler.MountRoutes)
		r.Route("/assignments", params.AssignmentHandler.MountRoutes)
		r.Route("/feedback", params.FeedbackHandler.MountRoutes)
		if params.AnalyticsHandler != nil {
			r.Route("/analytics", params.AnalyticsHandler.MountRoutes)
		}
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
