package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/seek/internal/httpserver/deps"
	"github.com/MrSnakeDoc/seek/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/seek/internal/httpserver/mw"
)

func init() { Register(registerSearch) }

func registerSearch(r chi.Router, d deps.Deps) {
	r.With(mw.OptionalAuth(d.Auth.Tokens(), d.Logger)).Get("/search", handlers.Redirect(d))
}
