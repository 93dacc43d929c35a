package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/seek/internal/httpserver/deps"
	"github.com/MrSnakeDoc/seek/internal/httpserver/mw"
	"github.com/MrSnakeDoc/seek/internal/logger"
)

func GetSettings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := d.Settings.Get(r.Context(), mw.UserID(r.Context()))
		if err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		writeData(w, http.StatusOK, s)
	}
}

// PutSettings replaces the display preferences. The disabled default bangs
// are managed through /api/bangs/defaults and are kept as stored.
func PutSettings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := mw.UserID(r.Context())

		current, err := d.Settings.Get(r.Context(), userID)
		if err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}

		next := current
		if err := decodeJSON(w, r, &next); err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		next.UserID = userID
		next.DisabledDefaultBangs = current.DisabledDefaultBangs

		if err := next.Validate(); err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}

		saved, err := d.Settings.Save(r.Context(), next)
		if err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		d.Logger.Info("settings saved", logger.String("user_id", userID))
		writeData(w, http.StatusOK, saved)
	}
}
