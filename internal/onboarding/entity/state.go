package entity

import "time"

// Persisted key names, shared with the browser-side wizard.
const (
	KeySetupStarted  = "setup_started"
	KeyWalletSet     = "wallet_set"
	KeyAuthorizerSet = "authorizer_set"
	KeyPoolJoined    = "pool_joined"
	KeyAccountID     = "bloxAccountId"
	KeyBloxPeerID    = "bloxPeerId"
	KeyAppPeerID     = "appPeerId"
)

// Progress is the ordered checklist of the setup wizard.
type Progress struct {
	Started       bool `json:"setup_started"`
	WalletSet     bool `json:"wallet_set"`
	AuthorizerSet bool `json:"authorizer_set"`
	PoolJoined    bool `json:"pool_joined"`
}

// PeerIdentity binds the setup app's peer to the Blox peer.
type PeerIdentity struct {
	AppPeerID  string `json:"appPeerId,omitempty"`
	BloxPeerID string `json:"bloxPeerId,omitempty"`
}

// Complete reports whether both sides of the exchange are known.
func (p PeerIdentity) Complete() bool {
	return p.AppPeerID != "" && p.BloxPeerID != ""
}

// State is everything the wizard remembers between page loads. Secrets (account
// seed, wallet password, signature) are deliberately not part of it.
type State struct {
	Progress  Progress     `json:"progress"`
	AccountID string       `json:"bloxAccountId,omitempty"`
	Peers     PeerIdentity `json:"peers"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Flags renders the checklist the way the browser stores it: "true" or "".
func (s *State) Flags() map[string]string {
	b := func(v bool) string {
		if v {
			return "true"
		}
		return ""
	}
	return map[string]string{
		KeySetupStarted:  b(s.Progress.Started),
		KeyWalletSet:     b(s.Progress.WalletSet),
		KeyAuthorizerSet: b(s.Progress.AuthorizerSet),
		KeyPoolJoined:    b(s.Progress.PoolJoined),
	}
}
