package session

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/functionland/blox-wizard/internal/api"
)

type Handler struct {
	m      *Manager
	logger *zap.SugaredLogger
}

func NewHandler(m *Manager, logger *zap.SugaredLogger) *Handler {
	return &Handler{m: m, logger: logger}
}

// Issue handles GET /api/session.
func (h *Handler) Issue(w http.ResponseWriter, r *http.Request) {
	tok, err := h.m.SetCookie(w)
	if err != nil {
		h.logger.Errorw("issue session", "err", err)
		api.WriteServerError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	api.WriteJSON(w, http.StatusOK, tok)
}

// Middleware rejects mutating /api requests without a valid token. Reads pass.
func Middleware(m *Manager, required bool, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !required || !guarded(r) {
				next.ServeHTTP(w, r)
				return
			}
			if err := m.Verify(FromRequest(r)); err != nil {
				logger.Infow("session rejected", "method", r.Method, "path", r.URL.Path, "err", err)
				api.WriteError(w, http.StatusUnauthorized, ErrInvalidToken.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func guarded(r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
		return false
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
