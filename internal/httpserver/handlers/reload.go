package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linksaver/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linksaver/internal/logger"
)

// Reload asks the site rules reloader for an immediate reload. A reload
// already queued answers 429.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.ReloadTrigger == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "reload not available"})
			return
		}

		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual site rules reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, messageResponse{Message: "Reload triggered"})
		default:
			d.Logger.Warn("site rules reload already pending",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "Reload already in progress, please wait"})
		}
	}
}
