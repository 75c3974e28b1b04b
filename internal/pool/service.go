package pool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/functionland/blox-wizard/internal/chain"
	"github.com/functionland/blox-wizard/internal/container"
	"github.com/functionland/blox-wizard/internal/gateway"
	"github.com/functionland/blox-wizard/pkg/utilities"
)

//go:generate mockgen -destination=../mocks/pool.go -package=mocks github.com/functionland/blox-wizard/internal/pool Backend,StatusSource

// Backend issues pool writes on the node.
type Backend interface {
	JoinPool(ctx context.Context, poolID, accountID string) (gateway.Body, error)
	LeavePool(ctx context.Context, poolID, accountID string) (gateway.Body, error)
	CancelJoin(ctx context.Context, poolID, accountID string) (gateway.Body, error)
}

// StatusSource reads an account's pool membership.
type StatusSource interface {
	UserStatus(ctx context.Context, accountID string) (chain.UserStatus, error)
}

var (
	ErrAlreadyMember         = errors.New("already a member of a pool")
	ErrRequestAlreadyPending = errors.New("a join request is already pending")
	ErrNotMember             = errors.New("not a member of any pool")
	ErrNoPendingRequest      = errors.New("no pending join request")
	ErrMissingArgument       = errors.New("pool id and account id are required")
	ErrNotConfirmed          = errors.New("pool status did not confirm the action")
)

// Options tune the workflow; zero values get defaults.
type Options struct {
	RestartSet      []string
	RestartTimeout  time.Duration
	ConfirmAttempts int
	ConfirmInterval time.Duration
}

// Workflow runs join, leave and cancel: precondition check, backend write,
// restart of the dependent containers, then status polling until the new
// state is visible.
type Workflow struct {
	backend Backend
	status  StatusSource
	ctl     container.Controller
	opts    Options
	logger  *zap.SugaredLogger
}

func NewWorkflow(b Backend, s StatusSource, ctl container.Controller, opts Options, logger *zap.SugaredLogger) *Workflow {
	if opts.ConfirmAttempts < 1 {
		opts.ConfirmAttempts = 1
	}
	if opts.RestartTimeout <= 0 {
		opts.RestartTimeout = time.Minute
	}
	return &Workflow{backend: b, status: s, ctl: ctl, opts: opts, logger: logger}
}

// Status reads the current membership of accountID.
func (w *Workflow) Status(ctx context.Context, accountID string) (Membership, chain.UserStatus, error) {
	st, err := w.status.UserStatus(ctx, accountID)
	if err != nil {
		return Membership{}, chain.UserStatus{}, err
	}
	return MembershipFromStatus(st), st, nil
}

// Join requests membership of poolID. current must be NotMember; the check
// happens before any call is made.
func (w *Workflow) Join(ctx context.Context, current Membership, poolID, accountID string) (*ActionResult, error) {
	switch current.State {
	case Member:
		return nil, ErrAlreadyMember
	case RequestPending:
		return nil, ErrRequestAlreadyPending
	}
	return w.run(ctx, ActionJoin, poolID, accountID, w.backend.JoinPool, func(m Membership) bool {
		return m.State != NotMember
	})
}

// Leave gives up membership. current must be Member.
func (w *Workflow) Leave(ctx context.Context, current Membership, poolID, accountID string) (*ActionResult, error) {
	if current.State != Member {
		return nil, ErrNotMember
	}
	if poolID == "" {
		poolID = current.PoolID
	}
	return w.run(ctx, ActionLeave, poolID, accountID, w.backend.LeavePool, func(m Membership) bool {
		return m.State == NotMember
	})
}

// Cancel withdraws a pending join request. current must be RequestPending.
func (w *Workflow) Cancel(ctx context.Context, current Membership, poolID, accountID string) (*ActionResult, error) {
	if current.State != RequestPending {
		return nil, ErrNoPendingRequest
	}
	if poolID == "" {
		poolID = current.PoolID
	}
	return w.run(ctx, ActionCancel, poolID, accountID, w.backend.CancelJoin, func(m Membership) bool {
		return m.State == NotMember
	})
}

type writeFunc func(ctx context.Context, poolID, accountID string) (gateway.Body, error)

func (w *Workflow) run(ctx context.Context, action, poolID, accountID string, write writeFunc, settled func(Membership) bool) (*ActionResult, error) {
	if poolID == "" || accountID == "" {
		return nil, ErrMissingArgument
	}
	res := &ActionResult{ActionID: utilities.NewSnowflakeID(), Action: action, PoolID: poolID}
	log := w.logger.With("action_id", res.ActionID, "action", action, "pool_id", poolID, "account_id", accountID)
	log.Infow("pool action started")

	body, err := write(ctx, poolID, accountID)
	if err != nil {
		log.Warnw("pool action rejected", "err", err)
		return nil, err
	}
	var reply struct {
		Status string `json:"status"`
	}
	if err := body.Decode("pool "+action, &reply); err != nil {
		log.Warnw("pool action reply unreadable", "err", err)
		return nil, err
	}
	res.Status = reply.Status

	res.Restarts = container.RestartBatch(ctx, w.ctl, w.opts.RestartSet, w.opts.RestartTimeout, log)
	if n := container.Failed(res.Restarts); n > 0 {
		log.Warnw("some containers failed to restart", "failed", n)
	}

	m, err := w.confirm(ctx, accountID, settled)
	res.Membership = m.State
	if m.PoolID != "" {
		res.PoolID = m.PoolID
	}
	if err != nil {
		log.Warnw("pool action not confirmed", "membership", m.State, "err", err)
		return res, err
	}
	log.Infow("pool action confirmed", "membership", m.State)
	return res, nil
}

// confirm polls the status at a fixed interval until settled or the attempts run out.
func (w *Workflow) confirm(ctx context.Context, accountID string, settled func(Membership) bool) (Membership, error) {
	var last Membership
	var lastErr error
	for i := 0; i < w.opts.ConfirmAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return last, ctx.Err()
			case <-time.After(w.opts.ConfirmInterval):
			}
		}
		m, _, err := w.Status(ctx, accountID)
		if err != nil {
			lastErr = err
			continue
		}
		last, lastErr = m, nil
		if settled(m) {
			return m, nil
		}
	}
	if lastErr != nil {
		return last, fmt.Errorf("%w: %v", ErrNotConfirmed, lastErr)
	}
	return last, fmt.Errorf("%w: membership is %q", ErrNotConfirmed, last.State)
}
