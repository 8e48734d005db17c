package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

const (
	CookieName = "signup_session"
	// DefaultTTL outlives the draft store's TTL so a draft is never orphaned
	// by an expired cookie first.
	DefaultTTL = 24 * time.Hour

	sessionClaim = "sid"
)

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "session context value " + k.name
}

var sessionIDKey = &contextKey{"SessionID"}

// Manager issues and verifies the signed session cookie that scopes a
// browser's drafts.
type Manager struct {
	auth   *jwtauth.JWTAuth
	ttl    time.Duration
	secure bool
	newID  func() string
}

// Option is a functional option for configuring Manager
type Option func(*Manager)

// WithTTL sets how long an issued cookie stays valid
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithSecureCookie marks the cookie Secure
func WithSecureCookie(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

// WithIDGenerator replaces the session id source
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		m.newID = fn
	}
}

// NewManager signs session cookies with HS256 and the given secret.
func NewManager(secret []byte, opts ...Option) *Manager {
	m := &Manager{
		auth:  jwtauth.New("HS256", secret, nil),
		ttl:   DefaultTTL,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Middleware attaches a session id to every request. A request without a
// valid cookie gets a fresh id and a new cookie.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := m.verify(TokenFromCookie(r))
		if sid == "" {
			var err error
			sid, err = m.issue(w)
			if err != nil {
				slog.Error("Failed to issue session cookie", "error", err)
				http.Error(w, "failed to start session", http.StatusInternalServerError)
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sid)))
	})
}

// Encode returns a signed session token for sid.
func (m *Manager) Encode(sid string) (string, error) {
	claims := map[string]interface{}{sessionClaim: sid}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, m.ttl)
	_, token, err := m.auth.Encode(claims)
	return token, err
}

func (m *Manager) verify(tokenString string) string {
	if tokenString == "" {
		return ""
	}
	token, err := jwtauth.VerifyToken(m.auth, tokenString)
	if err != nil {
		slog.Debug("Discarding invalid session cookie", "error", err)
		return ""
	}
	raw, ok := token.Get(sessionClaim)
	if !ok {
		return ""
	}
	sid, _ := raw.(string)
	return sid
}

func (m *Manager) issue(w http.ResponseWriter) (string, error) {
	sid := m.newID()
	token, err := m.Encode(sid)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	slog.Debug("Started signup session", "session", sid)
	return sid, nil
}

func TokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// WithSessionID returns a copy of ctx carrying sid.
func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sid)
}

// SessionID returns the session id attached by Middleware.
func SessionID(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sessionIDKey).(string)
	return sid, ok && sid != ""
}
