package pool

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AccountSource resolves the node's account id.
type AccountSource interface {
	ResolveAccountID(ctx context.Context) (string, error)
}

var ErrNoAccount = errors.New("node has no account id yet")

// Monitor re-reads the membership on a fixed interval and on demand. Whichever
// observation is written last is the one served.
type Monitor struct {
	wf       *Workflow
	accounts AccountSource
	interval time.Duration
	logger   *zap.SugaredLogger

	mu   sync.RWMutex
	snap *Snapshot

	cancel context.CancelFunc
	done   chan struct{}
	now    func() time.Time
}

func NewMonitor(wf *Workflow, accounts AccountSource, interval time.Duration, logger *zap.SugaredLogger) *Monitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Monitor{wf: wf, accounts: accounts, interval: interval, logger: logger, now: time.Now}
}

func (m *Monitor) Name() string { return "pool-monitor" }

// Start launches the polling loop; it runs until Stop or ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) error {
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	go m.loop(ctx)
	return nil
}

// Stop ends the polling loop and waits for it.
func (m *Monitor) Stop() error {
	if m.cancel == nil {
		return nil
	}
	m.cancel()
	<-m.done
	return nil
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

func (m *Monitor) poll(ctx context.Context) {
	if _, err := m.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
		m.logger.Debugw("pool status poll failed", "err", err)
	}
}

// Refresh reads the membership now and records it.
func (m *Monitor) Refresh(ctx context.Context) (Snapshot, error) {
	accountID, err := m.accounts.ResolveAccountID(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if accountID == "" {
		return Snapshot{}, ErrNoAccount
	}
	mem, st, err := m.wf.Status(ctx, accountID)
	if err != nil {
		return Snapshot{}, err
	}
	s := Snapshot{AccountID: accountID, Membership: mem, Status: st, FetchedAt: m.now().UTC()}
	m.set(s)
	return s, nil
}

// Observe records a membership learned from a completed action.
func (m *Monitor) Observe(accountID string, mem Membership) {
	m.set(Snapshot{AccountID: accountID, Membership: mem, FetchedAt: m.now().UTC()})
}

// Snapshot returns the last observation, if any.
func (m *Monitor) Snapshot() (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snap == nil {
		return Snapshot{}, false
	}
	return *m.snap, true
}

func (m *Monitor) set(s Snapshot) {
	m.mu.Lock()
	m.snap = &s
	m.mu.Unlock()
}
