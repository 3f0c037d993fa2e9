// Package rest assembles the chi router for the HTTP API.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"snipetrack-backend/infrastructure/di"
	"snipetrack-backend/interfaces/http/rest/handlers"
	"snipetrack-backend/interfaces/http/rest/middleware"
	"snipetrack-backend/pkg/common"
)

// NewRouter builds the complete HTTP router from the container
func NewRouter(c *di.Container) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger(c.Logger))
	r.Use(middleware.RateLimit(c.RateLimiter, c.Logger))

	if c.Config.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		common.RespondJSON(w, http.StatusOK, map[string]any{"status": "healthy"})
	})
	r.Get("/ready", func(w http.ResponseWriter, _ *http.Request) {
		common.RespondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	sessionHandler := handlers.NewSessionHandler(c.Identity, c.Logger)
	itemHandler := handlers.NewItemHandler(c.Resolver, c.Logger)
	transactionHandler := handlers.NewTransactionHandler(c.Scanner, c.Logger)

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/session/validate", sessionHandler.ValidateSession)
		api.Post("/items/resolve", itemHandler.ResolveItem)
		api.Post("/transactions/scan", transactionHandler.ScanTransactions)

		if c.Portfolio != nil {
			portfolioHandler := handlers.NewPortfolioHandler(c.Portfolio, c.Logger)
			api.Route("/portfolio", func(pf chi.Router) {
				pf.Get("/", portfolioHandler.GetPortfolio)
				pf.Post("/items", portfolioHandler.AddItem)
				pf.Post("/items/import", portfolioHandler.ImportTransaction)
				pf.Post("/items/bulk", portfolioHandler.BulkAdd)
				pf.Delete("/items/{itemID}", portfolioHandler.RemoveItem)
				pf.Post("/refresh", portfolioHandler.RefreshValuations)
			})
		}
	})

	return r
}
