package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/seek/internal/httpserver/deps"
	"github.com/MrSnakeDoc/seek/internal/httpserver/handlers"
)

func init() {
	Register(registerLiveness)
	Register(registerDiagnostics, adminNetworks)
}

func registerLiveness(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
}

func registerDiagnostics(r chi.Router, d deps.Deps) {
	r.Get("/readyz", handlers.Readyz(d))
	r.Get("/infra", handlers.Infra(d))
}
