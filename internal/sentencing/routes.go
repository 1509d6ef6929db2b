package sentencing

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/sentences", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)

		r.Route("/{sentenceID}", func(r chi.Router) {
			r.Get("/", h.Show)
			r.Put("/", h.Update)
			r.Post("/release", h.Release)
			r.Post("/cumulate", h.Cumulate)
			r.Post("/recalculate", h.Recalculate)

			r.Post("/reductions", h.AddReduction)
			r.Delete("/reductions/{entryID}", h.DeleteReduction)

			r.Post("/arrests", h.AddArrest)
			r.Put("/arrests/{entryID}", h.UpdateArrest)
			r.Delete("/arrests/{entryID}", h.DeleteArrest)

			r.Post("/labor-credits", h.AddLaborCredit)
			r.Put("/labor-credits/{entryID}", h.UpdateLaborCredit)
			r.Delete("/labor-credits/{entryID}", h.DeleteLaborCredit)

			r.Patch("/fractions/{fractionID}", h.UpdateFraction)
		})
	})
}
