package onboarding

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/functionland/blox-wizard/internal/api"
	"github.com/functionland/blox-wizard/internal/onboarding/entity"
)

// Handler exposes the wizard state to the UI.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// View is the onboarding document returned to the UI.
type View struct {
	Flags     map[string]string   `json:"flags"`
	AccountID string              `json:"bloxAccountId"`
	Peers     entity.PeerIdentity `json:"peers"`
	NextStep  Step                `json:"nextStep"`
	NextPath  string              `json:"nextPath"`
}

func NewView(st *entity.State) View {
	next := NextStep(st.Progress)
	return View{
		Flags:     st.Flags(),
		AccountID: st.AccountID,
		Peers:     st.Peers,
		NextStep:  next,
		NextPath:  next.Path(),
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Load(r.Context())
	if err != nil {
		h.logger.Errorw("load onboarding state", "err", err)
		api.WriteServerError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, NewView(st))
}

// MarkStep handles POST /api/onboarding/steps/{flag}.
func (h *Handler) MarkStep(w http.ResponseWriter, r *http.Request) {
	flag := r.PathValue("flag")
	st, err := h.svc.Mark(r.Context(), flag)
	if err != nil {
		if errors.Is(err, ErrUnknownFlag) {
			api.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Errorw("mark onboarding step", "flag", flag, "err", err)
		api.WriteServerError(w, err)
		return
	}
	h.logger.Infow("onboarding step done", "flag", flag)
	api.WriteJSON(w, http.StatusOK, NewView(st))
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reset(r.Context()); err != nil {
		h.logger.Errorw("reset onboarding state", "err", err)
		api.WriteServerError(w, err)
		return
	}
	h.logger.Infow("onboarding state reset")
	api.WriteJSON(w, http.StatusOK, NewView(&entity.State{}))
}
