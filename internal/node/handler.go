package node

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/functionland/blox-wizard/internal/api"
	"github.com/functionland/blox-wizard/internal/gateway"
)

// Backend reads node-level documents.
type Backend interface {
	Properties(ctx context.Context) (gateway.Body, error)
	ChainStatus(ctx context.Context) (json.RawMessage, error)
}

type Handler struct {
	backend Backend
	logger  *zap.SugaredLogger
}

func NewHandler(b Backend, logger *zap.SugaredLogger) *Handler {
	return &Handler{backend: b, logger: logger}
}

// Properties handles GET /api/properties; the body is relayed as-is.
func (h *Handler) Properties(w http.ResponseWriter, r *http.Request) {
	body, err := h.backend.Properties(r.Context())
	if err != nil {
		h.logger.Warnw("read properties", "err", err)
		api.WriteServerError(w, err)
		return
	}
	ct := "text/plain; charset=utf-8"
	if json.Valid(body) {
		ct = "application/json"
	}
	api.WriteRaw(w, ct, body)
}

// ChainStatus handles GET /api/chain/status. A body that is not JSON is a 500.
func (h *Handler) ChainStatus(w http.ResponseWriter, r *http.Request) {
	raw, err := h.backend.ChainStatus(r.Context())
	if err != nil {
		h.logger.Warnw("read chain status", "err", err)
		api.WriteServerError(w, err)
		return
	}
	api.WriteRaw(w, "application/json", raw)
}
