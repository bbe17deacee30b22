package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Role is the closed set of actor kinds known to the portal.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// ParseRole converts a stored role tag into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Identity is the authenticated actor attached to a request. The role is the
// one captured when the session was issued; a role change by an admin takes
// effect at the next login.
type Identity struct {
	AccountID uuid.UUID `json:"account_id"`
	Role      Role      `json:"role"`
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity stores ident in ctx.
func WithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// IdentityFromContext returns the authenticated identity, or nil for an
// anonymous request.
func IdentityFromContext(ctx context.Context) *Identity {
	ident, _ := ctx.Value(identityKey).(*Identity)
	return ident
}
