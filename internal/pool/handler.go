package pool

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/functionland/blox-wizard/internal/api"
	"github.com/functionland/blox-wizard/internal/onboarding/entity"
)

// Lister reads the public pool directory.
type Lister interface {
	Pools(ctx context.Context) (json.RawMessage, error)
	Users(ctx context.Context, body []byte) (json.RawMessage, error)
}

// ProgressMarker reads and records wizard steps.
type ProgressMarker interface {
	Load(ctx context.Context) (*entity.State, error)
	Mark(ctx context.Context, flag string) (*entity.State, error)
}

var ErrAuthorizerNotSet = errors.New("authorizer exchange not completed")

// Handler exposes the pool workflow.
type Handler struct {
	wf       *Workflow
	monitor  *Monitor
	accounts AccountSource
	lister   Lister
	progress ProgressMarker
	logger   *zap.SugaredLogger
}

func NewHandler(wf *Workflow, monitor *Monitor, accounts AccountSource, lister Lister, progress ProgressMarker, logger *zap.SugaredLogger) *Handler {
	return &Handler{wf: wf, monitor: monitor, accounts: accounts, lister: lister, progress: progress, logger: logger}
}

type actionFunc func(ctx context.Context, current Membership, poolID, accountID string) (*ActionResult, error)

func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, true, h.wf.Join)
}

func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, false, h.wf.Leave)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, false, h.wf.Cancel)
}

func (h *Handler) action(w http.ResponseWriter, r *http.Request, needPool bool, run actionFunc) {
	f, err := api.BindFields(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if needPool {
		if err := f.Require("poolID"); err != nil {
			api.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	st, err := h.progress.Load(r.Context())
	if err != nil {
		api.WriteServerError(w, err)
		return
	}
	if !st.Progress.AuthorizerSet {
		api.WriteError(w, http.StatusConflict, ErrAuthorizerNotSet.Error())
		return
	}

	accountID := f["accountId"]
	if accountID == "" {
		if accountID, err = h.accounts.ResolveAccountID(r.Context()); err != nil {
			api.WriteServerError(w, err)
			return
		}
		if accountID == "" {
			api.WriteError(w, http.StatusBadRequest, "accountId is required")
			return
		}
	}

	current, _, err := h.wf.Status(r.Context(), accountID)
	if err != nil {
		h.logger.Warnw("read pool status", "account_id", accountID, "err", err)
		api.WriteServerError(w, err)
		return
	}

	res, err := run(r.Context(), current, f["poolID"], accountID)
	if res != nil && res.Membership != "" {
		h.monitor.Observe(accountID, Membership{State: res.Membership, PoolID: res.PoolID})
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyMember), errors.Is(err, ErrRequestAlreadyPending),
			errors.Is(err, ErrNotMember), errors.Is(err, ErrNoPendingRequest):
			api.WriteError(w, http.StatusConflict, err.Error())
		case errors.Is(err, ErrMissingArgument):
			api.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			api.WriteServerError(w, err)
		}
		return
	}

	if res.Action == ActionJoin {
		if _, err := h.progress.Mark(r.Context(), entity.KeyPoolJoined); err != nil {
			h.logger.Errorw("record pool_joined", "err", err)
		}
	}
	api.WriteJSON(w, http.StatusOK, res)
}

// Status serves the last observed membership; ?refresh=1 reads it now.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.monitor.Snapshot()
	if !ok || r.URL.Query().Get("refresh") != "" {
		var err error
		snap, err = h.monitor.Refresh(r.Context())
		if errors.Is(err, ErrNoAccount) {
			api.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		if err != nil {
			api.WriteServerError(w, err)
			return
		}
	}
	api.WriteJSON(w, http.StatusOK, snap)
}

// List relays the pool directory.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	raw, err := h.lister.Pools(r.Context())
	if err != nil {
		h.logger.Warnw("fetch pools", "err", err)
		api.WriteJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}
	api.WriteRaw(w, "application/json", raw)
}

// Users relays a users query to the pool directory.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	raw, err := h.lister.Users(r.Context(), body)
	if err != nil {
		h.logger.Warnw("fetch pool users", "err", err)
		api.WriteJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}
	api.WriteRaw(w, "application/json", raw)
}
