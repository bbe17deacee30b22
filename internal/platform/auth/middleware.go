package auth

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
)

// SessionCookieName is the cookie carrying the session token for browser
// clients; API clients send the same token as a bearer credential.
const SessionCookieName = "session_token"

const sessionTokenContextKey = "session_token"

// TokenFromRequest extracts the session token from the Authorization header
// or the session cookie. Empty string means anonymous.
func TokenFromRequest(c echo.Context) string {
	if h := c.Request().Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// SessionTokenFromEchoContext returns the validated token for the current
// request, set by SessionMiddleware. Used by logout.
func SessionTokenFromEchoContext(c echo.Context) string {
	token, _ := c.Get(sessionTokenContextKey).(string)
	return token
}

// SessionMiddleware resolves the request's session token to an identity and
// threads it through the request context. Requests without a token, or with a
// token that no longer resolves, proceed anonymously; the role gate on each
// route group decides whether that is acceptable.
func SessionMiddleware(store *SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := TokenFromRequest(c)
			if token == "" {
				return next(c)
			}

			ident, err := store.Get(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, ErrSessionNotFound) {
					return next(c)
				}
				return err
			}

			c.Set(sessionTokenContextKey, token)
			c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), ident)))
			return next(c)
		}
	}
}
