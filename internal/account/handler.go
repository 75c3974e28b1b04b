package account

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/functionland/blox-wizard/internal/api"
)

type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// ID handles GET /api/account/id. An unconfigured node yields an empty id.
func (h *Handler) ID(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.AccountID(r.Context())
	if err != nil {
		h.logger.Warnw("read account id", "err", err)
		api.WriteServerError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"accountId": id})
}

// Seed handles GET /api/account/seed.
func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	seed, err := h.svc.Seed(r.Context())
	if err != nil {
		h.logger.Warnw("read account seed", "err", err)
		api.WriteServerError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	api.WriteJSON(w, http.StatusOK, map[string]string{"accountSeed": seed})
}
