package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Decision is the outcome of an authorization check. Denials carry a reason
// for logging and error messages; they are ordinary values, never panics.
type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Authorize decides whether ident may exercise a route requiring one of the
// given roles. Pure and deterministic: anonymous identities and identities
// whose role is outside the required set are denied.
func Authorize(ident *Identity, required ...Role) Decision {
	if ident == nil {
		return Deny("authentication required")
	}
	for _, r := range required {
		if ident.Role == r {
			return Allow()
		}
	}
	names := make([]string, len(required))
	for i, r := range required {
		names[i] = string(r)
	}
	return Deny(fmt.Sprintf("required role: %s", strings.Join(names, " or ")))
}

// AuthorizeSelfAction layers the self-action guard on top of the role check:
// a privileged actor may not target their own account (an admin changing
// their own role).
func AuthorizeSelfAction(ident *Identity, target uuid.UUID) Decision {
	if ident == nil {
		return Deny("authentication required")
	}
	if ident.AccountID == target {
		return Deny("cannot perform this action on your own account")
	}
	return Allow()
}

// RequireRole returns middleware enforcing Authorize on every request:
// 401 for anonymous requests, 403 when the session role is insufficient.
func RequireRole(roles ...Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident := IdentityFromContext(c.Request().Context())
			if ident == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if d := Authorize(ident, roles...); !d.Allowed {
				return echo.NewHTTPError(http.StatusForbidden, d.Reason)
			}
			return next(c)
		}
	}
}

// RequireSession admits any authenticated identity regardless of role.
func RequireSession() echo.MiddlewareFunc {
	return RequireRole(RolePatient, RoleDoctor, RoleAdmin)
}
