package account

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medrec/portal/internal/platform/auth"
)

// Repository persists accounts. Lookups that miss return ErrNotFound;
// Create returns ErrDuplicateIdentity on a username or email collision.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	// GetByEmailForUpdate row-locks the account for the duration of the
	// surrounding transaction. Outside a transaction it behaves like
	// GetByEmail.
	GetByEmailForUpdate(ctx context.Context, email string) (*Account, error)
	UpdateProfile(ctx context.Context, a *Account) error
	UpdateRole(ctx context.Context, id uuid.UUID, role auth.Role) error
	SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	SetResetCode(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error
	// SetPasswordAndClearResetCode applies both mutations as one statement
	// so a recovery-code consumption cannot leave partial state.
	SetPasswordAndClearResetCode(ctx context.Context, id uuid.UUID, hash string) error
	List(ctx context.Context, limit, offset int) ([]*Account, int, error)
	ListByRole(ctx context.Context, role auth.Role, limit, offset int) ([]*Account, int, error)
}
