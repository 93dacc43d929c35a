package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/seek/internal/httpserver/deps"
	"github.com/MrSnakeDoc/seek/internal/logger"
)

// Reload triggers a manual reload of the catalog file
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual catalog reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeData(w, http.StatusAccepted, map[string]string{"status": "reload triggered"})
		default:
			d.Logger.Warn("catalog reload already pending",
				logger.String("remote_ip", r.RemoteAddr))
			writeError(w, http.StatusTooManyRequests, "RELOAD_PENDING", "reload already in progress, please wait")
		}
	}
}
