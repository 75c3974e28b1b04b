package account

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/functionland/blox-wizard/internal/gateway"
	"github.com/functionland/blox-wizard/internal/onboarding"
	"github.com/functionland/blox-wizard/internal/onboarding/repo"
)

type fakeBackend struct {
	id, seed string
	err      error
	idCalls  int
}

func (f *fakeBackend) AccountID(context.Context) (string, error) {
	f.idCalls++
	return f.id, f.err
}

func (f *fakeBackend) AccountSeed(context.Context) (string, error) { return f.seed, f.err }

func newService(b Backend) (*Service, *onboarding.Service) {
	progress := onboarding.NewService(repo.NewMemoryRepo())
	return NewService(b, progress, zap.NewNop().Sugar()), progress
}

func TestResolveAccountIDPrefersStore(t *testing.T) {
	b := &fakeBackend{id: "5Grw"}
	svc, progress := newService(b)
	ctx := context.Background()

	id, err := svc.ResolveAccountID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "5Grw", id)
	assert.Equal(t, 1, b.idCalls)

	st, err := progress.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "5Grw", st.AccountID)

	id, err = svc.ResolveAccountID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "5Grw", id)
	assert.Equal(t, 1, b.idCalls, "stored id must be served without a backend call")
}

func TestResolveAccountIDEmpty(t *testing.T) {
	svc, progress := newService(&fakeBackend{})

	id, err := svc.ResolveAccountID(context.Background())
	require.NoError(t, err)
	assert.Empty(t, id)
	st, _ := progress.Load(context.Background())
	assert.Empty(t, st.AccountID)
}

func TestReconcile(t *testing.T) {
	svc, _ := newService(&fakeBackend{id: "5Grw", seed: "0xsecret"})

	st, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Progress.Started)
	assert.True(t, st.Progress.WalletSet)
	assert.True(t, st.Progress.AuthorizerSet)
	assert.False(t, st.Progress.PoolJoined)

	svc, _ = newService(&fakeBackend{id: "5Grw"})
	st, err = svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.False(t, st.Progress.Started)
}

func TestHandlerID(t *testing.T) {
	svc, _ := newService(&fakeBackend{id: "5Grw"})
	h := NewHandler(svc, zap.NewNop().Sugar())

	rec := httptest.NewRecorder()
	h.ID(rec, httptest.NewRequest(http.MethodGet, "/api/account/id", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"accountId":"5Grw"}`, rec.Body.String())
}

func TestHandlerSeed(t *testing.T) {
	svc, progress := newService(&fakeBackend{seed: "0xsecret"})
	h := NewHandler(svc, zap.NewNop().Sugar())

	rec := httptest.NewRecorder()
	h.Seed(rec, httptest.NewRequest(http.MethodGet, "/api/account/seed", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"accountSeed":"0xsecret"}`, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	st, _ := progress.Load(context.Background())
	assert.Empty(t, st.AccountID)
}

func TestHandlerProcessFailure(t *testing.T) {
	fail := &gateway.Error{Kind: gateway.ProcessFailure, Op: "GET /account/id", Err: errors.New("exit status 1")}
	svc, _ := newService(&fakeBackend{err: fail})
	h := NewHandler(svc, zap.NewNop().Sugar())

	rec := httptest.NewRecorder()
	h.ID(rec, httptest.NewRequest(http.MethodGet, "/api/account/id", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Server error: ")
	assert.Contains(t, rec.Body.String(), "exit status 1")
}
