package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIssueVerify(t *testing.T) {
	m, err := NewManager("", time.Hour)
	require.NoError(t, err)

	tok, err := m.Issue()
	require.NoError(t, err)
	assert.NoError(t, m.Verify(tok.Value))
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, time.Minute)

	assert.ErrorIs(t, m.Verify(""), ErrInvalidToken)
	assert.ErrorIs(t, m.Verify(tok.Value+"x"), ErrInvalidToken)
}

func TestVerifyRejectsOtherKey(t *testing.T) {
	a, _ := NewManager("key-a", time.Hour)
	b, _ := NewManager("key-b", time.Hour)
	tok, err := a.Issue()
	require.NoError(t, err)
	assert.ErrorIs(t, b.Verify(tok.Value), ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	m, _ := NewManager("k", time.Minute)
	tok, err := m.Issue()
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(time.Hour) }
	assert.ErrorIs(t, m.Verify(tok.Value), ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	m, _ := NewManager("k", time.Hour)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Middleware(m, true, zap.NewNop().Sugar())(next)

	serve := func(req *http.Request) int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, serve(httptest.NewRequest(http.MethodGet, "/api/account/id", nil)))
	assert.Equal(t, http.StatusNoContent, serve(httptest.NewRequest(http.MethodPost, "/webui/welcome", nil)))
	assert.Equal(t, http.StatusUnauthorized, serve(httptest.NewRequest(http.MethodPost, "/api/pools/join", nil)))

	tok, _ := m.Issue()
	req := httptest.NewRequest(http.MethodPost, "/api/pools/join", nil)
	req.Header.Set(HeaderName, tok.Value)
	assert.Equal(t, http.StatusNoContent, serve(req))

	req = httptest.NewRequest(http.MethodPost, "/api/docker/restart", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: tok.Value})
	assert.Equal(t, http.StatusNoContent, serve(req))
}

func TestMiddlewareNotRequired(t *testing.T) {
	m, _ := NewManager("k", time.Hour)
	h := Middleware(m, false, zap.NewNop().Sugar())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/pools/join", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestIssueHandler(t *testing.T) {
	m, _ := NewManager("k", time.Hour)
	h := NewHandler(m, zap.NewNop().Sugar())

	rec := httptest.NewRecorder()
	h.Issue(rec, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var tok Token
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	assert.NoError(t, m.Verify(tok.Value))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}
