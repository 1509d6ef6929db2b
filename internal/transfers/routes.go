package transfers

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/transfers", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/stats", h.Stats)
		r.Get("/monthly-report", h.MonthlyReport)
		r.Get("/quarterly-report", h.QuarterlyReport)
		r.Get("/penitentiaries", h.Penitentiaries)
		r.Route("/{transferID}", func(r chi.Router) {
			r.Get("/", h.Show)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
		})
	})
}
