package account

import (
	"context"

	"go.uber.org/zap"

	"github.com/functionland/blox-wizard/internal/onboarding/entity"
)

// Backend reads the node's identity.
type Backend interface {
	AccountID(ctx context.Context) (string, error)
	AccountSeed(ctx context.Context) (string, error)
}

// Progress is the part of the onboarding tracker this package writes to.
type Progress interface {
	Load(ctx context.Context) (*entity.State, error)
	SetAccountID(ctx context.Context, accountID string) (*entity.State, error)
	Reconcile(ctx context.Context, accountID string, hasSeed bool) (*entity.State, error)
}

type Service struct {
	backend  Backend
	progress Progress
	logger   *zap.SugaredLogger
}

func NewService(b Backend, p Progress, logger *zap.SugaredLogger) *Service {
	return &Service{backend: b, progress: p, logger: logger}
}

// ResolveAccountID returns the stored account id, asking the backend when none
// is stored yet. An empty result means the node has no account.
func (s *Service) ResolveAccountID(ctx context.Context) (string, error) {
	st, err := s.progress.Load(ctx)
	if err != nil {
		return "", err
	}
	if st.AccountID != "" {
		return st.AccountID, nil
	}
	return s.AccountID(ctx)
}

// AccountID reads the id from the backend and records it when present.
func (s *Service) AccountID(ctx context.Context) (string, error) {
	id, err := s.backend.AccountID(ctx)
	if err != nil {
		return "", err
	}
	if id != "" {
		if _, err := s.progress.SetAccountID(ctx, id); err != nil {
			s.logger.Errorw("record account id", "err", err)
		}
	}
	return id, nil
}

// Seed reads the seed from the backend. It is never stored.
func (s *Service) Seed(ctx context.Context) (string, error) {
	return s.backend.AccountSeed(ctx)
}

// Reconcile marks the first wizard steps done on a node that already has an
// account id and a seed.
func (s *Service) Reconcile(ctx context.Context) (*entity.State, error) {
	id, err := s.backend.AccountID(ctx)
	if err != nil {
		return nil, err
	}
	seed, err := s.backend.AccountSeed(ctx)
	if err != nil {
		return nil, err
	}
	return s.progress.Reconcile(ctx, id, seed != "")
}
