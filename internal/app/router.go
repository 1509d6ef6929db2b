package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/termene/termene/internal/alerts"
	"github.com/termene/termene/internal/commissions"
	"github.com/termene/termene/internal/persons"
	"github.com/termene/termene/internal/petitions"
	"github.com/termene/termene/internal/sentencing"
	"github.com/termene/termene/internal/transfers"
	"github.com/termene/termene/internal/users"
	"github.com/termene/termene/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	PersonsHandler     *persons.Handler
	SentencingHandler  *sentencing.Handler
	AlertsHandler      *alerts.Handler
	PetitionsHandler   *petitions.Handler
	TransfersHandler   *transfers.Handler
	CommissionsHandler *commissions.Handler
	UsersHandler       *users.Handler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with termene defaults. All module
// routes live under /api/v1; authentication happens upstream and the acting
// operator arrives in the X-Actor-ID header.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		params.PersonsHandler.MountRoutes(r)
		params.SentencingHandler.MountRoutes(r)
		params.AlertsHandler.MountRoutes(r)
		params.PetitionsHandler.MountRoutes(r)
		params.TransfersHandler.MountRoutes(r)
		params.CommissionsHandler.MountRoutes(r)
		params.UsersHandler.MountRoutes(r)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
