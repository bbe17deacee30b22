package account

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medrec/portal/internal/platform/auth"
)

// -- Mock Repository --

type mockRepo struct {
	items map[uuid.UUID]*Account
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Account)}
}

func (m *mockRepo) Create(_ context.Context, a *Account) error {
	for _, existing := range m.items {
		if existing.Username == a.Username || existing.Email == a.Email {
			return ErrDuplicateIdentity
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	m.items[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Account, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *mockRepo) GetByUsername(_ context.Context, username string) (*Account, error) {
	for _, a := range m.items {
		if a.Username == username {
			return a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*Account, error) {
	for _, a := range m.items {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) GetByEmailForUpdate(ctx context.Context, email string) (*Account, error) {
	return m.GetByEmail(ctx, email)
}

func (m *mockRepo) UpdateProfile(_ context.Context, a *Account) error {
	if _, ok := m.items[a.ID]; !ok {
		return ErrNotFound
	}
	m.items[a.ID] = a
	return nil
}

func (m *mockRepo) UpdateRole(_ context.Context, id uuid.UUID, role auth.Role) error {
	a, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	a.Role = role
	return nil
}

func (m *mockRepo) SetPasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	a, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (m *mockRepo) SetResetCode(_ context.Context, id uuid.UUID, code string, expiry time.Time) error {
	a, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	a.ResetCode = &code
	a.ResetCodeExpiry = &expiry
	return nil
}

func (m *mockRepo) SetPasswordAndClearResetCode(_ context.Context, id uuid.UUID, hash string) error {
	a, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	a.PasswordHash = hash
	a.ResetCode = nil
	a.ResetCodeExpiry = nil
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Account, int, error) {
	var result []*Account
	for _, a := range m.items {
		result = append(result, a)
	}
	return result, len(result), nil
}

func (m *mockRepo) ListByRole(_ context.Context, role auth.Role, limit, offset int) ([]*Account, int, error) {
	var result []*Account
	for _, a := range m.items {
		if a.Role == role {
			result = append(result, a)
		}
	}
	return result, len(result), nil
}

// -- Tests --

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username: "jdoe",
		Email:    "jdoe@example.com",
		Phone:    "5551234567",
		Password: "secret1",
	}
}

func TestRegister(t *testing.T) {
	svc := NewService(newMockRepo())

	a, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if a.Role != auth.RolePatient {
		t.Errorf("expected role patient, got %q", a.Role)
	}
	if a.PasswordHash == "secret1" {
		t.Error("password stored in plaintext")
	}
	if !CheckPassword(a.PasswordHash, "secret1") {
		t.Error("stored hash does not verify the original password")
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegisterInput()); err != nil {
		t.Fatalf("first Register() error: %v", err)
	}

	in := validRegisterInput()
	in.Email = "other@example.com"
	if _, err := svc.Register(ctx, in); err != ErrDuplicateIdentity {
		t.Errorf("expected ErrDuplicateIdentity, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegisterInput()); err != nil {
		t.Fatalf("first Register() error: %v", err)
	}

	in := validRegisterInput()
	in.Username = "otheruser"
	if _, err := svc.Register(ctx, in); err != ErrDuplicateIdentity {
		t.Errorf("expected ErrDuplicateIdentity, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"username too short", func(in *RegisterInput) { in.Username = "abc" }},
		{"email missing at", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"phone too short", func(in *RegisterInput) { in.Phone = "12345" }},
		{"password too short", func(in *RegisterInput) { in.Password = "12345" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegisterInput()
			tt.mutate(&in)
			if _, err := svc.Register(ctx, in); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestVerify(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegisterInput()); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	a, err := svc.Verify(ctx, "jdoe", "secret1")
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if a.Username != "jdoe" {
		t.Errorf("expected username jdoe, got %q", a.Username)
	}
}

func TestVerify_UniformFailure(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegisterInput()); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	// Wrong password and unknown username must be indistinguishable.
	if _, err := svc.Verify(ctx, "jdoe", "wrong-pass"); err != ErrInvalidCredentials {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Verify(ctx, "nobody", "secret1"); err != ErrInvalidCredentials {
		t.Errorf("unknown username: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSetPassword(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	a, err := svc.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	if err := svc.SetPassword(ctx, a.ID, "newsecret"); err != nil {
		t.Fatalf("SetPassword() error: %v", err)
	}

	if _, err := svc.Verify(ctx, "jdoe", "secret1"); err != ErrInvalidCredentials {
		t.Errorf("old password still accepted: %v", err)
	}
	if _, err := svc.Verify(ctx, "jdoe", "newsecret"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

func TestSetPassword_TooShort(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.SetPassword(context.Background(), uuid.New(), "short"); err == nil {
		t.Error("expected validation error for 5-char password")
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	a, err := svc.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, a.ID, ProfileInput{
		FullName: "Jane Doe",
		Phone:    "5559876543",
		Email:    "jane@example.com",
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error: %v", err)
	}
	if updated.FullName == nil || *updated.FullName != "Jane Doe" {
		t.Error("full name not updated")
	}
	if updated.Email != "jane@example.com" {
		t.Error("email not updated")
	}
}

func TestUpdateProfile_InvalidFullName(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	a, err := svc.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	_, err = svc.UpdateProfile(ctx, a.ID, ProfileInput{
		FullName: "",
		Phone:    "5559876543",
		Email:    "jane@example.com",
	})
	if err == nil {
		t.Error("expected error for empty full name")
	}
}

func TestUpdateRole(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	a, err := svc.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	if err := svc.UpdateRole(ctx, a.ID, auth.RoleDoctor); err != nil {
		t.Fatalf("UpdateRole() error: %v", err)
	}
	got, _ := repo.GetByID(ctx, a.ID)
	if got.Role != auth.RoleDoctor {
		t.Errorf("expected role doctor, got %q", got.Role)
	}
}

func TestUpdateRole_UnknownRole(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.UpdateRole(context.Background(), uuid.New(), auth.Role("superuser")); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestIsPatient(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	patient, err := svc.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	doctor := &Account{Username: "drsmith", Email: "dr@example.com", Role: auth.RoleDoctor}
	if err := repo.Create(ctx, doctor); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if ok, _ := svc.IsPatient(ctx, patient.ID); !ok {
		t.Error("expected patient account to be a patient")
	}
	if ok, _ := svc.IsPatient(ctx, doctor.ID); ok {
		t.Error("expected doctor account to not be a patient")
	}
	if ok, _ := svc.IsPatient(ctx, uuid.New()); ok {
		t.Error("expected unknown id to not be a patient")
	}
}

func TestEnsureAdmin(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	a, err := svc.EnsureAdmin(ctx, "admin@example.com", "adminpass")
	if err != nil {
		t.Fatalf("EnsureAdmin() error: %v", err)
	}
	if a.Username != "admin" || a.Role != auth.RoleAdmin {
		t.Errorf("unexpected bootstrap account: %s / %s", a.Username, a.Role)
	}

	// Second call returns the existing account without touching it.
	again, err := svc.EnsureAdmin(ctx, "other@example.com", "otherpass")
	if err != nil {
		t.Fatalf("second EnsureAdmin() error: %v", err)
	}
	if again.ID != a.ID {
		t.Error("expected EnsureAdmin to be idempotent")
	}
	if again.Email != "admin@example.com" {
		t.Error("expected existing admin email to be preserved")
	}
}
