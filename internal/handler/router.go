package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the API router.
func NewRouter(h *Handler, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Identity)                // caller account from X-Account
	r.Use(Logger(logger))          // structured access log
	r.Use(CORS)

	r.Get("/health", HealthCheck)

	r.Route("/market", func(r chi.Router) {
		r.Get("/", h.GetMarket)
		r.With(RequireAccount).Post("/toggle", h.ToggleMarket)
	})

	r.Route("/admins", func(r chi.Router) {
		r.Get("/", h.ListAdmins)
		r.With(RequireAccount).Post("/", h.AddAdmin)
		r.With(RequireAccount).Delete("/{account}", h.RemoveAdmin)
	})

	r.Route("/club-owners", func(r chi.Router) {
		r.Get("/", h.ListClubOwners)
		r.With(RequireAccount).Post("/", h.AddClubOwner)
		r.With(RequireAccount).Delete("/{account}", h.RemoveClubOwner)
	})

	r.Route("/clubs", func(r chi.Router) {
		r.Get("/", h.ListClubs)
		r.Get("/{id}", h.GetClub)
		r.Get("/{id}/boats", h.ListClubBoats)

		r.Group(func(r chi.Router) {
			r.Use(RequireAccount)
			r.Post("/", h.AddClub)
			r.Post("/{id}/open", h.OpenClub)
			r.Post("/{id}/close", h.CloseClub)
			r.Delete("/{id}", h.RemoveClub)
		})
	})

	r.Route("/boats", func(r chi.Router) {
		r.Get("/", h.ListBoatsForSale)
		r.Get("/{id}", h.GetBoat)

		r.Group(func(r chi.Router) {
			r.Use(RequireAccount)
			r.Post("/", h.AddBoat)
			r.Post("/{id}/toggle", h.ToggleBoat)
			r.Delete("/{id}", h.RemoveBoat)
			r.Post("/{id}/purchase", h.PurchaseBoat)
		})
	})

	r.Get("/purchases/{id}", h.GetPurchase)

	r.Route("/accounts/{account}", func(r chi.Router) {
		r.Get("/balance", h.GetBalance)
		r.Get("/club", h.GetOwnedClub)
		r.Get("/roles", h.GetRoles)
		r.Get("/purchases", h.ListPurchases)
		r.Get("/withdrawals", h.ListWithdrawals)
	})

	r.With(RequireAccount).Post("/withdrawals", h.Withdraw)
	r.With(RequireAccount).Get("/reconciliations", h.ListReconciliations)

	return r
}
