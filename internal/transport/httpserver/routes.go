package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"patron-crm-go/internal/config"
	"patron-crm-go/internal/transport/httpserver/handler"
	"patron-crm-go/internal/transport/httpserver/middleware"
	"patron-crm-go/pkg/logger"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.NewCORS(cfg.CORSOrigins))

	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics)
		r.Method(http.MethodGet, cfg.Metrics.Path, promhttp.Handler())
		log.Info("httpserver.router: metrics endpoint enabled", "path", cfg.Metrics.Path)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Get("/roles/catalogs", handlers.RoleCatalogs)
		r.Get("/roles/resolve", handlers.ResolveRole)
		r.Get("/roles/reciprocal", handlers.ReciprocalRole)

		r.Get("/patrons", handlers.ListPatrons)
		r.Put("/patrons/{id}", handlers.UpsertPatron)
		r.Get("/patrons/{id}", handlers.GetPatron)
		r.Get("/patrons/{id}/household", handlers.GetPatronHousehold)
		r.Delete("/patrons/{id}/household", handlers.LeaveHousehold)
		r.Post("/patrons/{id}/transfer", handlers.TransferPatron)
		r.Get("/patrons/{id}/connections", handlers.ListConnections)
		r.Get("/patrons/{id}/organizations", handlers.ListOrganizations)
		r.Get("/patrons/{id}/relationships", handlers.ListPatronRelationships)

		r.Post("/relationships", handlers.CreateRelationship)
		r.Post("/relationships/end", handlers.EndRelationship)
		r.Get("/relationships/active", handlers.ActiveRelationships)
		r.Delete("/relationships/{id}", handlers.EndRelationshipByID)

		r.Post("/households", handlers.CreateHousehold)
		r.Get("/households/conflict", handlers.HouseholdConflict)
		r.Get("/households/needs-creation", handlers.NeedsHouseholdCreation)
		r.Get("/households/{id}", handlers.GetHousehold)
		r.Patch("/households/{id}", handlers.UpdateHousehold)
		r.Put("/households/{id}/head", handlers.ChangeHead)
		r.Post("/households/{id}/members", handlers.AddHouseholdMember)

		r.Post("/household-links", handlers.BeginHouseholdLink)
		r.Get("/household-links/{id}", handlers.GetHouseholdLink)
		r.Post("/household-links/{id}/approve", handlers.ApproveHouseholdLink)
		r.Post("/household-links/{id}/head", handlers.ChooseLinkHead)
		r.Post("/household-links/{id}/complete", handlers.CompleteHouseholdLink)
		r.Delete("/household-links/{id}", handlers.CancelHouseholdLink)

		r.Get("/history", handlers.GetHistory)
		r.Delete("/history", handlers.ClearHistory)
		r.Post("/history/undo", handlers.Undo)
		r.Post("/history/redo", handlers.Redo)
		r.Put("/context", handlers.SetViewingContext)
	})

	return r
}
