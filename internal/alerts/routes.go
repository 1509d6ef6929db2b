package alerts

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/alerts", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/unread-count", h.UnreadCount)
		r.Get("/dashboard", h.Dashboard)
		r.Post("/generate", h.Generate)
		r.Post("/read-all", h.MarkAllRead)
		r.Post("/{alertID}/read", h.MarkRead)
	})
}
