package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/seek/internal/httpserver/deps"
	"github.com/MrSnakeDoc/seek/internal/httpserver/handlers"
)

func init() { Register(registerReload, adminNetworks, adminHosts) }

func registerReload(r chi.Router, d deps.Deps) {
	r.Post("/reload", handlers.Reload(d))
}
