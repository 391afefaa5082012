// Package httpapi exposes the dog deck over a small JSON HTTP API.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pawtrail/dogdeck/internal/app"
	"github.com/pawtrail/dogdeck/internal/domain"
)

// Deck is the behaviour the handlers need from the app layer.
type Deck interface {
	Next(ctx context.Context) (domain.DogImage, error)
	Vote(ctx context.Context, img domain.DogImage, like bool) (app.VoteResult, error)
	Favorites(ctx context.Context) ([]domain.DogImage, error)
	RemoveFavorite(ctx context.Context, img domain.DogImage) error
}

// NewRouter wires routes and middleware around deck.
func NewRouter(deck Deck, log *zap.Logger) *chi.Mux {
	if log == nil {
		log = zap.NewNop()
	}
	h := &handler{deck: deck, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(withRequestLogging(log))
	r.Use(middleware.Recoverer)

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})

	r.Get("/healthz", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/images/random", h.randomImage)
		r.Post("/votes", h.vote)
		r.Get("/favorites", h.favorites)
		r.Delete("/favorites/{id}", h.removeFavorite)
	})

	return r
}
