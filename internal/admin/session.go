package admin

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/tableorder/internal/config"
	"golang.org/x/crypto/bcrypt"
)

const (
	CookieName = "adminSession"
	SessionTTL = 12 * time.Hour
)

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminDisabled      = errors.New("admin area is disabled")
)

// Authenticator checks the single admin account and tracks its sessions.
type Authenticator struct {
	user string
	hash []byte
	ttl  time.Duration
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]time.Time
}

// NewAuthenticator hashes the configured password once. An empty password
// disables every login.
func NewAuthenticator(cfg config.AdminConfig) (*Authenticator, error) {
	a := &Authenticator{
		user:     strings.TrimSpace(cfg.User),
		ttl:      SessionTTL,
		now:      time.Now,
		sessions: make(map[string]time.Time),
	}
	password := strings.TrimSpace(cfg.Password)
	if password == "" {
		log.Warn().Msg("admin: ADMIN_PASSWORD is empty, admin area disabled")
		return a, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("admin: failed to hash admin password: %w", err)
	}
	a.hash = hash
	return a, nil
}

// Login returns a new session token for valid credentials.
func (a *Authenticator) Login(user, password string) (string, time.Time, error) {
	user, password = strings.TrimSpace(user), strings.TrimSpace(password)
	if user == "" || password == "" {
		return "", time.Time{}, ErrMissingCredentials
	}
	if a.hash == nil {
		return "", time.Time{}, ErrAdminDisabled
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.user)) == 1
	passErr := bcrypt.CompareHashAndPassword(a.hash, []byte(password))
	if !userOK || passErr != nil {
		log.Warn().Str("user", user).Msg("admin: rejected login attempt")
		return "", time.Time{}, ErrInvalidCredentials
	}

	token, err := uuid.NewV4()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("admin: failed to generate session token: %w", err)
	}
	expires := a.now().Add(a.ttl)

	a.mu.Lock()
	a.prune()
	a.sessions[token.String()] = expires
	a.mu.Unlock()

	log.Info().Str("user", user).Time("expires_at", expires).Msg("admin: session opened")
	return token.String(), expires, nil
}

func (a *Authenticator) Valid(token string) bool {
	if token == "" {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	expires, ok := a.sessions[token]
	if !ok {
		return false
	}
	if !a.now().Before(expires) {
		delete(a.sessions, token)
		return false
	}
	return true
}

func (a *Authenticator) Logout(token string) {
	a.mu.Lock()
	delete(a.sessions, token)
	a.mu.Unlock()
}

// prune drops expired sessions; callers hold mu.
func (a *Authenticator) prune() {
	now := a.now()
	for token, expires := range a.sessions {
		if !now.Before(expires) {
			delete(a.sessions, token)
		}
	}
}

// RequireSession rejects requests without a live admin session cookie.
func (a *Authenticator) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil || !a.Valid(cookie.Value) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			if err := json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"}); err != nil {
				log.Error().Err(err).Msg("admin: failed to write unauthorized response")
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionCookie builds the cookie carrying token; an empty token expires it.
func SessionCookie(token string, expires time.Time, secure bool) *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
	if token == "" {
		c.MaxAge = -1
		return c
	}
	c.Expires = expires
	c.MaxAge = int(SessionTTL / time.Second)
	return c
}
