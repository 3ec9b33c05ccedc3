// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"storefront/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(storeHandler *handler.StoreHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	r.Get("/health", storeHandler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", storeHandler.Login)
		r.Post("/auth/register", storeHandler.Register)

		r.Get("/users/{id}", storeHandler.GetUser)
		r.Put("/users/{id}", storeHandler.UpdateUser)

		r.Get("/games", storeHandler.ListGames)

		r.Route("/cart/{userID}", func(r chi.Router) {
			r.Get("/", storeHandler.GetCart)
			r.Put("/", storeHandler.ReplaceCart)
			r.Delete("/", storeHandler.ClearCart)
			r.Post("/items", storeHandler.AddToCart)
		})

		r.Post("/purchases", storeHandler.Checkout)
	})

	logger.Debug("HTTP routes registered")
	return r
}
