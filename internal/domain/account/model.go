package account

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medrec/portal/internal/platform/auth"
)

var (
	// ErrDuplicateIdentity is returned when a username or email is already
	// taken. Registration failures do not reveal which of the two collided.
	ErrDuplicateIdentity = errors.New("username or email already in use")

	// ErrInvalidCredentials covers both unknown-username and wrong-password
	// so callers cannot distinguish them.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNotFound is returned when an account lookup misses.
	ErrNotFound = errors.New("account not found")
)

// Account is the identity holder for all three actor kinds. The reset code
// and its expiry are either both set or both nil.
type Account struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Username        string     `db:"username" json:"username"`
	Email           string     `db:"email" json:"email"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	FullName        *string    `db:"full_name" json:"full_name,omitempty"`
	Phone           *string    `db:"phone" json:"phone,omitempty"`
	Avatar          *string    `db:"avatar" json:"avatar,omitempty"`
	Role            auth.Role  `db:"role" json:"role"`
	ResetCode       *string    `db:"reset_code" json:"-"`
	ResetCodeExpiry *time.Time `db:"reset_code_expiry" json:"-"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

const (
	usernameMinLen = 4
	usernameMaxLen = 80
	emailMaxLen    = 120
	phoneMinLen    = 10
	phoneMaxLen    = 15
	passwordMinLen = 6
)

func validateUsername(username string) error {
	if len(username) < usernameMinLen || len(username) > usernameMaxLen {
		return fmt.Errorf("username must be between %d and %d characters", usernameMinLen, usernameMaxLen)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" || len(email) > emailMaxLen {
		return fmt.Errorf("email must be non-empty and at most %d characters", emailMaxLen)
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

func validatePhone(phone string) error {
	if len(phone) < phoneMinLen || len(phone) > phoneMaxLen {
		return fmt.Errorf("phone must be between %d and %d characters", phoneMinLen, phoneMaxLen)
	}
	return nil
}

// ValidatePassword enforces the minimum password length. Exported for the
// recovery coordinator, which replaces passwords outside a session.
func ValidatePassword(password string) error {
	if len(password) < passwordMinLen {
		return fmt.Errorf("password must be at least %d characters", passwordMinLen)
	}
	return nil
}
