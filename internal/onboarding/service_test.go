package onboarding

import (
	"context"
	"crypto/rand"
	"errors"
	"path/filepath"
	"testing"

	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/functionland/blox-wizard/internal/onboarding/entity"
	"github.com/functionland/blox-wizard/internal/onboarding/repo"
)

func newPeerID(t *testing.T) string {
	t.Helper()
	_, pub, err := crypto.GenerateEd25519Key(rand.Reader)
	require.NoError(t, err)
	id, err := peer.IDFromPublicKey(pub)
	require.NoError(t, err)
	return id.String()
}

func TestNextStep(t *testing.T) {
	tests := []struct {
		p    entity.Progress
		want Step
	}{
		{entity.Progress{}, StepWelcome},
		{entity.Progress{Started: true}, StepConnectWallet},
		{entity.Progress{Started: true, WalletSet: true}, StepSetAuthorizer},
		{entity.Progress{Started: true, WalletSet: true, AuthorizerSet: true}, StepPools},
		{entity.Progress{Started: true, WalletSet: true, AuthorizerSet: true, PoolJoined: true}, StepHome},
		// an earlier unset flag always wins
		{entity.Progress{WalletSet: true, AuthorizerSet: true, PoolJoined: true}, StepWelcome},
		{entity.Progress{Started: true, AuthorizerSet: true}, StepConnectWallet},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NextStep(tt.p), "%+v", tt.p)
	}
}

func TestNextStepIsPure(t *testing.T) {
	p := entity.Progress{Started: true, WalletSet: true}
	first := NextStep(p)
	NextStep(entity.Progress{})
	NextStep(entity.Progress{Started: true, WalletSet: true, AuthorizerSet: true, PoolJoined: true})
	assert.Equal(t, StepSetAuthorizer, first)
	assert.Equal(t, first, NextStep(p))
	assert.Equal(t, "/webui/set-authorizer", first.Path())
}

func TestDone(t *testing.T) {
	p := entity.Progress{Started: true}
	assert.True(t, Done(StepWelcome, p))
	assert.False(t, Done(StepConnectWallet, p))
	assert.True(t, Done(StepHome, p))
}

func TestMarkIsMonotonicUntilReset(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repo.NewMemoryRepo())

	_, err := svc.Mark(ctx, entity.KeySetupStarted)
	require.NoError(t, err)
	st, err := svc.Mark(ctx, entity.KeyWalletSet)
	require.NoError(t, err)
	assert.True(t, st.Progress.Started)
	assert.True(t, st.Progress.WalletSet)

	st, err = svc.Mark(ctx, entity.KeyWalletSet)
	require.NoError(t, err)
	assert.True(t, st.Progress.Started, "marking again must not clear other flags")

	_, err = svc.Mark(ctx, "credentials")
	assert.True(t, errors.Is(err, ErrUnknownFlag))

	require.NoError(t, svc.Reset(ctx))
	st, err = svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.Progress{}, st.Progress)
}

func TestSetPeers(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repo.NewMemoryRepo())
	app, blox := newPeerID(t), newPeerID(t)

	_, err := svc.SetPeers(ctx, app, "not-a-peer")
	assert.True(t, errors.Is(err, ErrInvalidPeer))
	st, _ := svc.Load(ctx)
	assert.False(t, st.Progress.AuthorizerSet)

	st, err = svc.SetPeers(ctx, app, blox)
	require.NoError(t, err)
	assert.True(t, st.Peers.Complete())
	assert.True(t, st.Progress.AuthorizerSet)
	assert.Equal(t, "true", st.Flags()[entity.KeyAuthorizerSet])
	assert.Equal(t, "", st.Flags()[entity.KeyPoolJoined])
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repo.NewMemoryRepo())

	st, err := svc.Reconcile(ctx, "5Grw", false)
	require.NoError(t, err)
	assert.Equal(t, StepWelcome, NextStep(st.Progress))

	st, err = svc.Reconcile(ctx, "5Grw", true)
	require.NoError(t, err)
	assert.Equal(t, StepPools, NextStep(st.Progress))
	assert.Equal(t, "5Grw", st.AccountID)
}

func TestFileRepoPersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	r1, err := repo.NewFileRepo(path)
	require.NoError(t, err)
	st, err := r1.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.Progress{}, st.Progress)

	_, err = NewService(r1).Mark(ctx, entity.KeySetupStarted)
	require.NoError(t, err)

	r2, err := repo.NewFileRepo(path)
	require.NoError(t, err)
	st, err = r2.Load(ctx)
	require.NoError(t, err)
	assert.True(t, st.Progress.Started)
	assert.False(t, st.UpdatedAt.IsZero())

	require.NoError(t, r2.Delete(ctx))
	require.NoError(t, r2.Delete(ctx), "deleting twice is fine")
}
