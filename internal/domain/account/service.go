package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medrec/portal/internal/platform/auth"
)

// Service is the credential store plus the account operations layered on it.
// Authorization is not decided here; the role gate runs before any privileged
// call reaches this service.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterInput carries the self-registration fields. Role is not accepted:
// every registration creates a patient.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Register creates a patient account, failing with ErrDuplicateIdentity when
// the username or email is taken.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Account, error) {
	if err := validateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validatePhone(in.Phone); err != nil {
		return nil, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByUsername(ctx, in.Username); err == nil {
		return nil, ErrDuplicateIdentity
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateIdentity
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	phone := in.Phone
	a := &Account{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        &phone,
		Role:         auth.RolePatient,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Verify checks a username/password pair. Unknown usernames and wrong
// passwords produce the same ErrInvalidCredentials; a dummy hash comparison
// keeps the two paths at comparable cost.
func (s *Service) Verify(ctx context.Context, username, password string) (*Account, error) {
	a, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		CheckPassword(string(dummyHash), password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(a.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

// SetPassword unconditionally replaces the account's password hash.
func (s *Service) SetPassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.repo.SetPasswordHash(ctx, id, hash)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

// ProfileInput carries the self-service profile fields.
type ProfileInput struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
}

// UpdateProfile updates the caller's own display fields.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, in ProfileInput) (*Account, error) {
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validatePhone(in.Phone); err != nil {
		return nil, err
	}
	if in.FullName == "" || len(in.FullName) > 100 {
		return nil, fmt.Errorf("full name must be between 1 and 100 characters")
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.Email = in.Email
	a.FullName = &in.FullName
	a.Phone = &in.Phone
	if in.Avatar != "" {
		a.Avatar = &in.Avatar
	}
	if err := s.repo.UpdateProfile(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateRole changes the target account's role. The self-action guard runs in
// the handler; the service validates the role tag and target existence.
func (s *Service) UpdateRole(ctx context.Context, id uuid.UUID, role auth.Role) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	return s.repo.UpdateRole(ctx, id, role)
}

func (s *Service) ListAccounts(ctx context.Context, limit, offset int) ([]*Account, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Account, int, error) {
	return s.repo.ListByRole(ctx, auth.RolePatient, limit, offset)
}

// IsPatient reports whether id references an existing patient account.
func (s *Service) IsPatient(ctx context.Context, id uuid.UUID) (bool, error) {
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return a.Role == auth.RolePatient, nil
}

// EnsureAdmin creates the bootstrap admin account on first run. Existing
// admin accounts are left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (*Account, error) {
	a, err := s.repo.GetByUsername(ctx, "admin")
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	a = &Account{
		Username:     "admin",
		Email:        email,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
