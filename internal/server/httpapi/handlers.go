package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/go-chi/chi/v5"
)

// handleFile redirects a valid resource token to a presigned download URL.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		writeBadRequest(w, "missing token")
		return
	}

	u, err := s.files.Resolve(r.Context(), token)
	switch {
	case errors.Is(err, common.ErrInvalidToken):
		writeUnauthorized(w, "invalid or expired link")
		return
	case err != nil:
		writeInternalError(w, "internal server error")
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, u, http.StatusFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			ctx := r.Context()
			logging.FromContext(ctx, s.logger).Warn(ctx, "health check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
