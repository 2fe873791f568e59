package interview

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers interview routes; mw runs on every route of the group
func RegisterRoutes(r chi.Router, h *Handler, mw ...func(next http.Handler) http.Handler) {
	r.Route("/interview", func(r chi.Router) {
		r.Use(mw...)

		r.Post("/start", h.Start)
		r.Get("/next/{sessionId}", h.Next)
		r.Post("/answer", h.Answer)
		r.Post("/complete", h.Complete)
		r.Post("/select", h.SelectDirectly)
		r.Post("/reset", h.Reset)
		r.Post("/lock", h.Lock)
		r.Get("/progress/{sessionId}", h.Progress)
		r.Get("/history/{caseId}", h.History)
		r.Get("/report/{caseId}", h.Report)
	})
}
