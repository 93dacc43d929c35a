package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/seek/internal/bangs"
	"github.com/MrSnakeDoc/seek/internal/domain"
	"github.com/MrSnakeDoc/seek/internal/httpserver/deps"
	"github.com/MrSnakeDoc/seek/internal/httpserver/mw"
)

// ListBangs returns the caller's merged table, custom bangs first.
// Anonymous callers get the catalog.
func ListBangs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table, err := d.Bangs.Resolved(r.Context(), mw.UserID(r.Context()))
		if err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		out := append([]domain.MergedBang(nil), table...)
		domain.SortForDisplay(out)
		writeData(w, http.StatusOK, out)
	}
}

func ListCustomBangs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		custom, err := d.Bangs.ListCustom(r.Context(), mw.UserID(r.Context()))
		if err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		writeData(w, http.StatusOK, custom)
	}
}

func CreateBang(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in bangs.Input
		if err := decodeJSON(w, r, &in); err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		rec, err := d.Bangs.Create(r.Context(), mw.UserID(r.Context()), in)
		if err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		writeData(w, http.StatusCreated, rec)
	}
}

func UpdateBang(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p bangs.Patch
		if err := decodeJSON(w, r, &p); err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		rec, err := d.Bangs.Update(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "id"), p)
		if err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		writeData(w, http.StatusOK, rec)
	}
}

func ToggleBang(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := d.Bangs.Toggle(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		writeData(w, http.StatusOK, rec)
	}
}

func DeleteBang(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Bangs.Delete(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type resetResponse struct {
	Deleted int64 `json:"deleted"`
}

// ResetBangs deletes every custom bang and restores every default.
func ResetBangs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := d.Bangs.Reset(r.Context(), mw.UserID(r.Context()))
		if err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		writeData(w, http.StatusOK, resetResponse{Deleted: n})
	}
}

type overrideRequest struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

// OverrideDefault edits a catalog bang by shadowing it with a custom one.
func OverrideDefault(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req overrideRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		rec, err := d.Bangs.OverrideDefault(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "shortcut"), req.URL, req.Label)
		if err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		writeData(w, http.StatusOK, rec)
	}
}

func DisableDefault(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Bangs.DisableDefault(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "shortcut")); err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func EnableDefault(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Bangs.EnableDefault(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "shortcut")); err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ImportBangs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := domain.DecodeTransfer(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		if mode := r.URL.Query().Get("mode"); mode != "" {
			doc.Mode = mode
			if err := doc.CheckEnvelope(); err != nil {
				writeServiceError(w, d.Logger, err)
				return
			}
		}
		res, err := d.Bangs.Import(r.Context(), mw.UserID(r.Context()), doc)
		if err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		writeData(w, http.StatusOK, res)
	}
}

// ExportBangs downloads the caller's custom bangs as a version-1 document.
func ExportBangs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := d.Bangs.Export(r.Context(), mw.UserID(r.Context()))
		if err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		filename := fmt.Sprintf("seek-bangs-%s.json", d.Now().Format(time.DateOnly))
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		writeJSON(w, http.StatusOK, doc)
	}
}
