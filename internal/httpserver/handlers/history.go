package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/seek/internal/domain"
	"github.com/MrSnakeDoc/seek/internal/httpserver/deps"
	"github.com/MrSnakeDoc/seek/internal/httpserver/mw"
)

func ListHistory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := d.History.List(r.Context(), mw.UserID(r.Context()),
			queryInt(r, "limit", 50), queryInt(r, "offset", 0))
		if err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		if entries == nil {
			entries = []domain.HistoryEntry{}
		}
		writeData(w, http.StatusOK, entries)
	}
}

type clearHistoryResponse struct {
	Deleted int64 `json:"deleted"`
}

func ClearHistory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := d.History.Clear(r.Context(), mw.UserID(r.Context()))
		if err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		writeData(w, http.StatusOK, clearHistoryResponse{Deleted: n})
	}
}

func DeleteHistoryEntry(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.History.Delete(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
