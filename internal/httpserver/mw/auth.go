package mw

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/linksaver/internal/auth"
	"github.com/MrSnakeDoc/linksaver/internal/logger"
)

// RequireOwner rejects requests without a valid token with 401 and stores
// the owner key of valid ones in the request context.
func RequireOwner(v *auth.Verifier, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromRequest(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := v.Parse(token)
			if err != nil {
				log.Debug("token rejected", logger.Error(err))
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithOwner(r.Context(), claims.OwnerKey())))
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
