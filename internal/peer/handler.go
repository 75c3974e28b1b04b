package peer

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"

	"go.uber.org/zap"

	"github.com/functionland/blox-wizard/internal/api"
	"github.com/functionland/blox-wizard/internal/gateway"
	"github.com/functionland/blox-wizard/internal/onboarding/entity"
)

// Backend performs the identity calls on the node.
type Backend interface {
	GenerateIdentity(ctx context.Context, seed string) (gateway.Body, error)
	ExchangePeer(ctx context.Context, peerID, seed string) (gateway.Body, error)
}

// Store keeps the outcome of the authorizer exchange.
type Store interface {
	Load(ctx context.Context) (*entity.State, error)
	SetPeers(ctx context.Context, appPeerID, bloxPeerID string) (*entity.State, error)
}

var bloxPeerPattern = regexp.MustCompile(`12D\w+`)

// BloxPeerID extracts the blox peer id from an exchange reply, or "" if the
// reply carries none.
func BloxPeerID(body []byte) string {
	var reply struct {
		PeerID string `json:"peer_id"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return ""
	}
	return bloxPeerPattern.FindString(reply.PeerID)
}

type Handler struct {
	backend Backend
	store   Store
	logger  *zap.SugaredLogger
}

func NewHandler(b Backend, s Store, logger *zap.SugaredLogger) *Handler {
	return &Handler{backend: b, store: s, logger: logger}
}

// Peers handles GET /api/peer/exchange with the recorded exchange outcome.
func (h *Handler) Peers(w http.ResponseWriter, r *http.Request) {
	st, err := h.store.Load(r.Context())
	if err != nil {
		api.WriteServerError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, st.Peers)
}

// Exchange handles POST /api/peer/exchange {PeerID, seed}. The backend reply is
// relayed unchanged; a valid blox peer in it is recorded.
func (h *Handler) Exchange(w http.ResponseWriter, r *http.Request) {
	f, err := api.BindFields(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := f.Require("PeerID", "seed"); err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	appPeer := f["PeerID"]

	body, err := h.backend.ExchangePeer(r.Context(), appPeer, f["seed"])
	if err != nil {
		h.logger.Warnw("peer exchange", "app_peer_id", appPeer, "err", err)
		api.WriteServerError(w, err)
		return
	}

	if blox := BloxPeerID(body); blox != "" {
		if _, err := h.store.SetPeers(r.Context(), appPeer, blox); err != nil {
			h.logger.Warnw("record peer identity", "app_peer_id", appPeer, "blox_peer_id", blox, "err", err)
		} else {
			h.logger.Infow("authorizer set", "app_peer_id", appPeer, "blox_peer_id", blox)
		}
	}
	relay(w, body)
}

// GenerateIdentity handles POST /api/peer/generate-identity {seed}.
func (h *Handler) GenerateIdentity(w http.ResponseWriter, r *http.Request) {
	f, err := api.BindFields(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := f.Require("seed"); err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	body, err := h.backend.GenerateIdentity(r.Context(), f["seed"])
	if err != nil {
		h.logger.Warnw("generate identity", "err", err)
		api.WriteServerError(w, err)
		return
	}
	relay(w, body)
}

func relay(w http.ResponseWriter, body []byte) {
	ct := "text/plain; charset=utf-8"
	if json.Valid(body) {
		ct = "application/json"
	}
	api.WriteRaw(w, ct, body)
}
