package pool_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/functionland/blox-wizard/internal/chain"
	"github.com/functionland/blox-wizard/internal/gateway"
	"github.com/functionland/blox-wizard/internal/mocks"
	"github.com/functionland/blox-wizard/internal/pool"
)

var restartSet = []string{"ipfs_host", "ipfs_cluster", "fula_go", "fula_node"}

type fixture struct {
	backend *mocks.MockBackend
	status  *mocks.MockStatusSource
	ctl     *mocks.MockController
	wf      *pool.Workflow
}

func newFixture(t *testing.T, attempts int) *fixture {
	ctl := gomock.NewController(t)
	t.Cleanup(ctl.Finish)

	f := &fixture{
		backend: mocks.NewMockBackend(ctl),
		status:  mocks.NewMockStatusSource(ctl),
		ctl:     mocks.NewMockController(ctl),
	}
	f.wf = pool.NewWorkflow(f.backend, f.status, f.ctl, pool.Options{
		RestartSet:      restartSet,
		RestartTimeout:  time.Second,
		ConfirmAttempts: attempts,
		ConfirmInterval: time.Millisecond,
	}, zap.NewNop().Sugar())
	return f
}

func (f *fixture) expectRestarts(failing string) {
	for _, name := range restartSet {
		var err error
		if name == failing {
			err = errors.New("restart failed")
		}
		f.ctl.EXPECT().Restart(gomock.Any(), name).Return(err).Times(1)
	}
}

func TestMembershipFromStatus(t *testing.T) {
	assert.Equal(t, pool.Membership{State: pool.NotMember}, pool.MembershipFromStatus(chain.UserStatus{}))
	assert.Equal(t, pool.Membership{State: pool.RequestPending, PoolID: "7"}, pool.MembershipFromStatus(chain.UserStatus{RequestPoolID: "7"}))
	assert.Equal(t, pool.Membership{State: pool.Member, PoolID: "3"}, pool.MembershipFromStatus(chain.UserStatus{PoolID: "3", RequestPoolID: "7"}))
}

func TestJoinFailsFastWhenNotNotMember(t *testing.T) {
	f := newFixture(t, 1)

	// no expectations: any backend, status or restart call fails the test
	_, err := f.wf.Join(context.Background(), pool.Membership{State: pool.Member, PoolID: "3"}, "7", "abc")
	assert.True(t, errors.Is(err, pool.ErrAlreadyMember))

	_, err = f.wf.Join(context.Background(), pool.Membership{State: pool.RequestPending, PoolID: "3"}, "7", "abc")
	assert.True(t, errors.Is(err, pool.ErrRequestAlreadyPending))
}

func TestJoin(t *testing.T) {
	f := newFixture(t, 1)
	f.backend.EXPECT().JoinPool(gomock.Any(), "7", "abc").Return(gateway.Body(`{"status":"joined"}`), nil)
	f.expectRestarts("")
	f.status.EXPECT().UserStatus(gomock.Any(), "abc").Return(chain.UserStatus{Account: "abc", RequestPoolID: "7"}, nil)

	res, err := f.wf.Join(context.Background(), pool.Membership{State: pool.NotMember}, "7", "abc")
	require.NoError(t, err)
	assert.Equal(t, "7", res.PoolID)
	assert.Equal(t, "joined", res.Status)
	assert.Equal(t, pool.RequestPending, res.Membership)
	assert.Len(t, res.Restarts, 4)
	assert.NotEmpty(t, res.ActionID)
}

func TestJoinRestartFailureDoesNotRollBack(t *testing.T) {
	f := newFixture(t, 1)
	f.backend.EXPECT().JoinPool(gomock.Any(), "7", "abc").Return(gateway.Body(`{"status":"joined"}`), nil)
	f.expectRestarts("fula_node")
	f.status.EXPECT().UserStatus(gomock.Any(), "abc").Return(chain.UserStatus{PoolID: "7"}, nil)

	res, err := f.wf.Join(context.Background(), pool.Membership{State: pool.NotMember}, "7", "abc")
	require.NoError(t, err)
	assert.Equal(t, pool.Member, res.Membership)
	ok := 0
	for _, r := range res.Restarts {
		if r.OK {
			ok++
		}
	}
	assert.Equal(t, 3, ok)
}

func TestJoinBackendFailureSkipsRestarts(t *testing.T) {
	f := newFixture(t, 1)
	upstream := &gateway.Error{Kind: gateway.UpstreamError, Op: "POST /pools/join", Err: errors.New("ERROR: low balance")}
	f.backend.EXPECT().JoinPool(gomock.Any(), "7", "abc").Return(nil, upstream)

	_, err := f.wf.Join(context.Background(), pool.Membership{State: pool.NotMember}, "7", "abc")
	assert.True(t, gateway.IsKind(err, gateway.UpstreamError))
}

func TestJoinMalformedReplyIsError(t *testing.T) {
	f := newFixture(t, 1)
	f.backend.EXPECT().JoinPool(gomock.Any(), "7", "abc").Return(gateway.Body("ok"), nil)

	_, err := f.wf.Join(context.Background(), pool.Membership{State: pool.NotMember}, "7", "abc")
	assert.True(t, gateway.IsKind(err, gateway.MalformedResponse))
}

func TestJoinPollsUntilVisible(t *testing.T) {
	f := newFixture(t, 3)
	f.backend.EXPECT().JoinPool(gomock.Any(), "7", "abc").Return(gateway.Body(`{"status":"joined"}`), nil)
	f.expectRestarts("")
	gomock.InOrder(
		f.status.EXPECT().UserStatus(gomock.Any(), "abc").Return(chain.UserStatus{}, nil),
		f.status.EXPECT().UserStatus(gomock.Any(), "abc").Return(chain.UserStatus{}, errors.New("timeout")),
		f.status.EXPECT().UserStatus(gomock.Any(), "abc").Return(chain.UserStatus{RequestPoolID: "7"}, nil),
	)

	res, err := f.wf.Join(context.Background(), pool.Membership{State: pool.NotMember}, "7", "abc")
	require.NoError(t, err)
	assert.NotEqual(t, pool.NotMember, res.Membership)
}

func TestJoinNotConfirmed(t *testing.T) {
	f := newFixture(t, 2)
	f.backend.EXPECT().JoinPool(gomock.Any(), "7", "abc").Return(gateway.Body(`{"status":"joined"}`), nil)
	f.expectRestarts("")
	f.status.EXPECT().UserStatus(gomock.Any(), "abc").Return(chain.UserStatus{}, nil).Times(2)

	res, err := f.wf.Join(context.Background(), pool.Membership{State: pool.NotMember}, "7", "abc")
	assert.True(t, errors.Is(err, pool.ErrNotConfirmed))
	require.NotNil(t, res)
	assert.Len(t, res.Restarts, 4)
}

func TestJoinRequiresArguments(t *testing.T) {
	f := newFixture(t, 1)
	_, err := f.wf.Join(context.Background(), pool.Membership{State: pool.NotMember}, "", "abc")
	assert.True(t, errors.Is(err, pool.ErrMissingArgument))
}

func TestLeave(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.wf.Leave(context.Background(), pool.Membership{State: pool.NotMember}, "7", "abc")
	assert.True(t, errors.Is(err, pool.ErrNotMember))

	f.backend.EXPECT().LeavePool(gomock.Any(), "7", "abc").Return(gateway.Body(`{"status":"left"}`), nil)
	f.expectRestarts("")
	f.status.EXPECT().UserStatus(gomock.Any(), "abc").Return(chain.UserStatus{}, nil)

	res, err := f.wf.Leave(context.Background(), pool.Membership{State: pool.Member, PoolID: "7"}, "", "abc")
	require.NoError(t, err)
	assert.Equal(t, pool.NotMember, res.Membership)
	assert.Equal(t, "7", res.PoolID)
}

func TestCancel(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.wf.Cancel(context.Background(), pool.Membership{State: pool.Member, PoolID: "7"}, "7", "abc")
	assert.True(t, errors.Is(err, pool.ErrNoPendingRequest))

	f.backend.EXPECT().CancelJoin(gomock.Any(), "7", "abc").Return(gateway.Body(`{"status":"cancelled"}`), nil)
	f.expectRestarts("ipfs_host")
	f.status.EXPECT().UserStatus(gomock.Any(), "abc").Return(chain.UserStatus{}, nil)

	res, err := f.wf.Cancel(context.Background(), pool.Membership{State: pool.RequestPending, PoolID: "7"}, "", "abc")
	require.NoError(t, err)
	assert.Equal(t, pool.NotMember, res.Membership)
}

type accountFunc func(ctx context.Context) (string, error)

func (f accountFunc) ResolveAccountID(ctx context.Context) (string, error) { return f(ctx) }

func TestMonitorRefreshAndSnapshot(t *testing.T) {
	f := newFixture(t, 1)
	m := pool.NewMonitor(f.wf, accountFunc(func(context.Context) (string, error) { return "abc", nil }), time.Hour, zap.NewNop().Sugar())

	_, ok := m.Snapshot()
	assert.False(t, ok)

	f.status.EXPECT().UserStatus(gomock.Any(), "abc").Return(chain.UserStatus{PoolID: "7"}, nil)
	snap, err := m.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pool.Member, snap.Membership.State)

	got, ok := m.Snapshot()
	require.True(t, ok)
	assert.Equal(t, snap, got)

	m.Observe("abc", pool.Membership{State: pool.NotMember})
	got, _ = m.Snapshot()
	assert.Equal(t, pool.NotMember, got.Membership.State)
}

func TestMonitorNoAccount(t *testing.T) {
	f := newFixture(t, 1)
	m := pool.NewMonitor(f.wf, accountFunc(func(context.Context) (string, error) { return "", nil }), time.Hour, zap.NewNop().Sugar())

	_, err := m.Refresh(context.Background())
	assert.True(t, errors.Is(err, pool.ErrNoAccount))
}

func TestMonitorPollsOnInterval(t *testing.T) {
	f := newFixture(t, 1)
	m := pool.NewMonitor(f.wf, accountFunc(func(context.Context) (string, error) { return "abc", nil }), 5*time.Millisecond, zap.NewNop().Sugar())

	f.status.EXPECT().UserStatus(gomock.Any(), "abc").Return(chain.UserStatus{RequestPoolID: "7"}, nil).MinTimes(2)

	require.NoError(t, m.Start(context.Background()))
	assert.Eventually(t, func() bool {
		s, ok := m.Snapshot()
		return ok && s.Membership.State == pool.RequestPending
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, m.Stop())
	assert.Equal(t, "pool-monitor", m.Name())
}
