package docker

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/functionland/blox-wizard/internal/api"
	"github.com/functionland/blox-wizard/internal/container"
)

// Handler exposes container restart and status to the UI.
type Handler struct {
	ctl    container.Controller
	names  []string
	logger *zap.SugaredLogger
}

// NewHandler serves ctl; names are reported when status is asked without one.
func NewHandler(ctl container.Controller, names []string, logger *zap.SugaredLogger) *Handler {
	return &Handler{ctl: ctl, names: names, logger: logger}
}

// Restart handles POST /api/docker/restart {container}.
func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	f, err := api.BindFields(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := f.Require("container"); err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := f["container"]
	if err := h.ctl.Restart(r.Context(), name); err != nil {
		if errors.Is(err, container.ErrNotAllowed) {
			api.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Errorw("restart container", "container", name, "err", err)
		api.WriteServerError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "Container %s restarted successfully", name)
}

// Status handles GET /api/docker/status?name=. Without a name every known
// container is reported.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name != "" {
		st, err := h.ctl.Status(r.Context(), name)
		if err != nil {
			h.writeErr(w, name, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, st)
		return
	}

	out := make([]container.Status, 0, len(h.names))
	for _, n := range h.names {
		st, err := h.ctl.Status(r.Context(), n)
		if err != nil {
			h.writeErr(w, n, err)
			return
		}
		out = append(out, st)
	}
	api.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) writeErr(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, container.ErrNotAllowed) {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Warnw("container status", "container", name, "err", err)
	api.WriteServerError(w, err)
}
