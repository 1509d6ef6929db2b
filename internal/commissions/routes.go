package commissions

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/commissions", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/stats", h.Stats)
		r.Get("/monthly-report", h.MonthlyReport)
		r.Get("/quarterly-report", h.QuarterlyReport)
		r.Get("/articles", h.Articles)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.Show)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
		})
	})
}
