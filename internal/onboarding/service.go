package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/functionland/blox-wizard/internal/onboarding/entity"
	"github.com/functionland/blox-wizard/internal/onboarding/repo"
)

// Step is a wizard page.
type Step string

const (
	StepWelcome       Step = "welcome"
	StepConnectWallet Step = "connect-to-wallet"
	StepSetAuthorizer Step = "set-authorizer"
	StepPools         Step = "pools"
	StepHome          Step = "home"
)

// Steps lists the wizard pages in order.
var Steps = []Step{StepWelcome, StepConnectWallet, StepSetAuthorizer, StepPools, StepHome}

// Path is the URL of the step's page.
func (s Step) Path() string { return "/webui/" + string(s) }

// NextStep returns the first step whose flag is unset, or home when all are set.
func NextStep(p entity.Progress) Step {
	switch {
	case !p.Started:
		return StepWelcome
	case !p.WalletSet:
		return StepConnectWallet
	case !p.AuthorizerSet:
		return StepSetAuthorizer
	case !p.PoolJoined:
		return StepPools
	default:
		return StepHome
	}
}

// Done reports whether the step's own flag is set, which is what enables its
// "Next" button.
func Done(s Step, p entity.Progress) bool {
	switch s {
	case StepWelcome:
		return p.Started
	case StepConnectWallet:
		return p.WalletSet
	case StepSetAuthorizer:
		return p.AuthorizerSet
	case StepPools:
		return p.PoolJoined
	default:
		return true
	}
}

var (
	ErrUnknownFlag = errors.New("unknown onboarding flag")
	ErrInvalidPeer = errors.New("invalid peer id")
)

// Service serializes read-modify-write cycles on the stored state.
type Service struct {
	mu   sync.Mutex
	repo repo.Repository
	now  func() time.Time
}

func NewService(r repo.Repository) *Service {
	return &Service{repo: r, now: time.Now}
}

// Load returns the current state.
func (s *Service) Load(ctx context.Context) (*entity.State, error) {
	return s.repo.Load(ctx)
}

// Mark sets one checklist flag. Flags are never cleared except by Reset.
func (s *Service) Mark(ctx context.Context, flag string) (*entity.State, error) {
	return s.update(ctx, func(st *entity.State) error {
		switch flag {
		case entity.KeySetupStarted:
			st.Progress.Started = true
		case entity.KeyWalletSet:
			st.Progress.WalletSet = true
		case entity.KeyAuthorizerSet:
			st.Progress.AuthorizerSet = true
		case entity.KeyPoolJoined:
			st.Progress.PoolJoined = true
		default:
			return fmt.Errorf("%w: %q", ErrUnknownFlag, flag)
		}
		return nil
	})
}

// SetAccountID records the node's account id.
func (s *Service) SetAccountID(ctx context.Context, accountID string) (*entity.State, error) {
	accountID = strings.TrimSpace(accountID)
	return s.update(ctx, func(st *entity.State) error {
		st.AccountID = accountID
		return nil
	})
}

// SetPeers records the result of the authorizer exchange and marks the
// authorizer step once both peers are valid.
func (s *Service) SetPeers(ctx context.Context, appPeerID, bloxPeerID string) (*entity.State, error) {
	for _, id := range []string{appPeerID, bloxPeerID} {
		if err := ValidatePeerID(id); err != nil {
			return nil, err
		}
	}
	return s.update(ctx, func(st *entity.State) error {
		st.Peers = entity.PeerIdentity{AppPeerID: appPeerID, BloxPeerID: bloxPeerID}
		st.Progress.AuthorizerSet = true
		return nil
	})
}

// Reconcile fast-forwards a node that is already provisioned: when the backend
// has both an account id and a seed, the first three steps are done.
func (s *Service) Reconcile(ctx context.Context, accountID string, hasSeed bool) (*entity.State, error) {
	if accountID == "" || !hasSeed {
		return s.Load(ctx)
	}
	return s.update(ctx, func(st *entity.State) error {
		st.AccountID = accountID
		st.Progress.Started = true
		st.Progress.WalletSet = true
		st.Progress.AuthorizerSet = true
		return nil
	})
}

// Reset forgets everything.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Delete(ctx)
}

func (s *Service) update(ctx context.Context, fn func(*entity.State) error) (*entity.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	st.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// ValidatePeerID checks that id is a libp2p peer id.
func ValidatePeerID(id string) error {
	if _, err := peer.Decode(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidPeer, id)
	}
	return nil
}
