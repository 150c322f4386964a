/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. Metrics:    Prometheus request counter + latency histogram
  5. CORS:       Cross-origin requests for the dashboard frontend

ROUTE GROUPS:
  /api/desks/*            Desk sessions and everything done at one
  /api/properties/*       Property-scoped reads (activity ledger)
  /metrics                Prometheus scrape endpoint
  /healthz                Liveness probe

SECURITY NOTE:
  Actor identity arrives pre-resolved in the open-desk request; there is
  no authentication middleware here. Deployments front this service with
  the property gateway that owns auth.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Desk session routes
		r.Route("/desks", func(r chi.Router) {
			r.Post("/", h.OpenDesk)
			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", h.CloseDesk)
				r.Get("/board", h.GetBoard)
				r.Post("/refresh", h.RefreshBoard)
				r.Post("/context", h.SetContext)
				r.Put("/draft", h.UpdateDraft)
				r.Get("/quote", h.GetQuote)
				r.Post("/hold", h.PlaceHold)
				r.Put("/payment-link/recipient", h.SaveRecipient)
				r.Post("/payment-link", h.CreatePaymentLink)
				r.Post("/cash", h.SubmitCash)
				r.Post("/room-status", h.CreateRoomStatus)
				r.Delete("/room-status/{availabilityID}", h.ReleaseRoomStatus)
			})
		})

		// Property routes
		r.Route("/properties", func(r chi.Router) {
			r.Get("/{id}/activity", h.ListActivity)
		})
	})

	// Operational endpoints
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", h.Healthz)

	return r
}
