package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/functionland/blox-wizard/pkg/utilities"
)

const (
	HeaderName = "X-Blox-Session"
	CookieName = "blox_session"
	issuer     = "blox-wizard"
)

var ErrInvalidToken = errors.New("invalid session token")

// Token is an issued session token.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Manager signs and checks the tokens that let the wizard pages call mutating
// routes. The key lives only in this process unless a secret is configured.
type Manager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewManager uses secret as the HS256 key, or a random one when it is empty.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate session key: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{key: key, ttl: ttl, now: time.Now}, nil
}

// Issue creates a new token.
func (m *Manager) Issue() (Token, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "webui",
		ID:        utilities.NewKSUID(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, ExpiresAt: exp.UTC()}, nil
}

// Verify checks signature, issuer and expiry.
func (m *Manager) Verify(token string) error {
	_, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}

// SetCookie issues a token and stores it in the session cookie.
func (m *Manager) SetCookie(w http.ResponseWriter) (Token, error) {
	tok, err := m.Issue()
	if err != nil {
		return Token{}, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tok.Value,
		Path:     "/",
		Expires:  tok.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return tok, nil
}

// FromRequest returns the token carried by r, header first.
func FromRequest(r *http.Request) string {
	if v := r.Header.Get(HeaderName); v != "" {
		return v
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}
