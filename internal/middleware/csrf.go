package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/teamkit/pkg/crypto"
	"github.com/charlesng35/teamkit/pkg/errors"
	"github.com/charlesng35/teamkit/pkg/logger"
	"github.com/charlesng35/teamkit/pkg/response"
)

const (
	// CSRFCookieName is the cookie used to transport the CSRF token to clients.
	CSRFCookieName = "teamkit_csrf"
	// CSRFHeaderName is the header scripted clients present for unsafe HTTP methods.
	CSRFHeaderName = "X-CSRF-Token"
	// CSRFFormField carries the token for plain HTML form posts.
	CSRFFormField = "csrf_token"

	csrfTokenLength  = 48
	csrfCookieMaxAge = 12 * 60 * 60 // 12 hours
	csrfLoggerModule = "csrf"
)

// CSRF guards form posts with a double-submit cookie. Reads get the token in a
// cookie and the X-CSRF-Token response header. Writes must send it back in that
// header or in the csrf_token form field.
func CSRF() gin.HandlerFunc {
	log := logger.WithModule(csrfLoggerModule)

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodOptions:
			c.Next()
			return
		case http.MethodGet, http.MethodHead:
			token, _, err := issueCSRFToken(c)
			if err != nil {
				response.Error(c, errors.ErrInternalServer)
				c.Abort()
				return
			}
			c.Header(CSRFHeaderName, token)
			c.Next()
			return
		}

		token, issued, err := issueCSRFToken(c)
		if err != nil {
			response.Error(c, errors.ErrInternalServer)
			c.Abort()
			return
		}
		if !tokensMatch(token, submittedCSRFToken(c)) {
			log.Warn("rejected form post without matching csrf token",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Bool("fresh_cookie", issued),
			)
			response.Error(c, errors.ErrCSRFInvalid)
			c.Abort()
			return
		}
		c.Next()
	}
}

// issueCSRFToken returns the token from the request cookie, minting one when
// the cookie is absent. The cookie is rewritten either way to slide its expiry.
func issueCSRFToken(c *gin.Context) (string, bool, error) {
	token, err := c.Cookie(CSRFCookieName)
	issued := err != nil || token == ""
	if issued {
		token, err = crypto.GenerateToken(csrfTokenLength)
		if err != nil {
			return "", false, err
		}
	}

	c.SetSameSite(http.SameSiteStrictMode)
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		Secure:   requestIsHTTPS(c.Request),
		MaxAge:   csrfCookieMaxAge,
		SameSite: http.SameSiteStrictMode,
	})
	return token, issued, nil
}

func submittedCSRFToken(c *gin.Context) string {
	if header := strings.TrimSpace(c.GetHeader(CSRFHeaderName)); header != "" {
		return header
	}
	return strings.TrimSpace(c.PostForm(CSRFFormField))
}

func requestIsHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func tokensMatch(expected, submitted string) bool {
	if expected == "" || len(expected) != len(submitted) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(submitted)) == 1
}
