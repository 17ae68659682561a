package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamkit/internal/auth"
	appErrors "github.com/charlesng35/teamkit/pkg/errors"
	"github.com/charlesng35/teamkit/pkg/metrics"
	"github.com/charlesng35/teamkit/pkg/response"
)

const (
	// CtxSessionKey holds the *auth.RequestSession bound to the request.
	CtxSessionKey = "session"
	// CtxUserIDKey holds the signed-in user id once RequireSession has run.
	CtxUserIDKey = "userID"
)

// Session binds a RequestSession to every request. GET requests with a valid
// cookie get a fresh expiry; an invalid cookie is cleared.
func Session(store *auth.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := store.ForRequest(c.Writer, c.Request)
		c.Set(CtxSessionKey, sess)

		if c.Request.Method == http.MethodGet {
			if err := sess.Refresh(); err != nil {
				recordRejection(err)
			}
		}

		c.Next()
	}
}

// RequestSession returns the session bound by Session, or nil.
func RequestSession(c *gin.Context) *auth.RequestSession {
	value, ok := c.Get(CtxSessionKey)
	if !ok {
		return nil
	}
	sess, _ := value.(*auth.RequestSession)
	return sess
}

// RequireSession rejects requests without a valid session with 401 and
// exposes the user id under CtxUserIDKey.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := RequestSession(c)
		if sess == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		payload, err := sess.Inspect()
		if err != nil {
			if c.Request.Method != http.MethodGet {
				recordRejection(err)
			}
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxUserIDKey, payload.UserID)
		c.Next()
	}
}

func recordRejection(err error) {
	switch {
	case errors.Is(err, auth.ErrSessionExpired):
		metrics.SessionRejections.WithLabelValues("expired").Inc()
	case errors.Is(err, auth.ErrInvalidSignature):
		metrics.SessionRejections.WithLabelValues("invalid_signature").Inc()
	}
}
