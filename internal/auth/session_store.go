package auth

import (
	"errors"
	"net/http"
	"time"
)

// DefaultSessionCookie is the cookie carrying the session token.
const DefaultSessionCookie = "session"

// ErrNoSession is returned by Inspect when the request carries no session cookie.
var ErrNoSession = errors.New("session: no session cookie")

// SessionStoreConfig tunes the session cookie.
type SessionStoreConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
	Path       string
}

// SessionStore turns a SessionCodec into cookie operations. It is safe for
// concurrent use; per-request state lives in RequestSession.
type SessionStore struct {
	codec      *SessionCodec
	cookieName string
	ttl        time.Duration
	secure     bool
	path       string
}

// NewSessionStore builds a cookie store over codec.
func NewSessionStore(codec *SessionCodec, cfg SessionStoreConfig) (*SessionStore, error) {
	if codec == nil {
		return nil, errors.New("session store: codec is required")
	}

	name := cfg.CookieName
	if name == "" {
		name = DefaultSessionCookie
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	path := cfg.Path
	if path == "" {
		path = "/"
	}

	return &SessionStore{
		codec:      codec,
		cookieName: name,
		ttl:        ttl,
		secure:     cfg.Secure,
		path:       path,
	}, nil
}

// CookieName returns the configured cookie name.
func (s *SessionStore) CookieName() string {
	return s.cookieName
}

// ForRequest binds the store to one request/response pair. The returned value
// must not outlive the request.
func (s *SessionStore) ForRequest(w http.ResponseWriter, r *http.Request) *RequestSession {
	return &RequestSession{store: s, w: w, r: r}
}

// RequestSession reads and writes the session cookie of a single request.
// Writes made through Set and Clear are visible to later Get calls.
type RequestSession struct {
	store *SessionStore
	w     http.ResponseWriter
	r     *http.Request

	resolved bool
	payload  *SessionPayload
	err      error
}

// Set issues a fresh token for userID with a full TTL and writes the cookie.
func (rs *RequestSession) Set(userID string) error {
	expires := rs.store.codec.Now().Add(rs.store.ttl)
	token, err := rs.store.codec.Sign(SessionPayload{UserID: userID, ExpiresAt: expires})
	if err != nil {
		return err
	}

	http.SetCookie(rs.w, rs.store.cookie(token, expires))
	rs.resolved = true
	rs.payload = &SessionPayload{UserID: userID, ExpiresAt: expires.Truncate(time.Second)}
	rs.err = nil
	return nil
}

// Get returns the verified payload, or nil when the cookie is absent or fails
// verification.
func (rs *RequestSession) Get() *SessionPayload {
	payload, err := rs.Inspect()
	if err != nil {
		return nil
	}
	return payload
}

// Inspect is Get with the reason for a missing session: ErrNoSession,
// ErrInvalidSignature or ErrSessionExpired.
func (rs *RequestSession) Inspect() (*SessionPayload, error) {
	if rs.resolved {
		return rs.payload, rs.err
	}
	rs.resolved = true

	cookie, err := rs.r.Cookie(rs.store.cookieName)
	if err != nil || cookie.Value == "" {
		rs.err = ErrNoSession
		return nil, rs.err
	}

	payload, err := rs.store.codec.Verify(cookie.Value)
	if err != nil {
		rs.err = err
		return nil, rs.err
	}
	rs.payload = &payload
	return rs.payload, nil
}

// Clear deletes the session cookie.
func (rs *RequestSession) Clear() {
	http.SetCookie(rs.w, &http.Cookie{
		Name:     rs.store.cookieName,
		Value:    "",
		Path:     rs.store.path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   rs.store.secure,
		SameSite: http.SameSiteLaxMode,
	})
	rs.resolved = true
	rs.payload = nil
	rs.err = ErrNoSession
}

// Refresh extends a valid session to a full TTL. A cookie that fails
// verification is cleared. It returns the error Inspect reported, if any.
func (rs *RequestSession) Refresh() error {
	payload, err := rs.Inspect()
	switch {
	case err == nil:
		return rs.Set(payload.UserID)
	case errors.Is(err, ErrNoSession):
		return err
	default:
		rs.Clear()
		return err
	}
}

func (s *SessionStore) cookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     s.path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
