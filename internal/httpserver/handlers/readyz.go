package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/seek/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready    bool   `json:"ready"`
	Postgres bool   `json:"postgres"`
	Error    string `json:"error,omitempty"`
}

// Readyz is ready when Postgres answers. Redis and SearXNG only degrade the
// service, see Infra.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if d.Postgres == nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Error: "postgres not configured"})
			return
		}
		if err := d.Postgres.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Error: "postgres unreachable"})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true, Postgres: true})
	}
}
