package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medrec/portal/internal/platform/auth"
	"github.com/medrec/portal/internal/platform/db"
)

// PatientChecker answers whether an account exists with the patient role.
type PatientChecker interface {
	IsPatient(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo     Repository
	patients PatientChecker
	tx       db.TxRunner
}

func NewService(repo Repository, patients PatientChecker, tx db.TxRunner) *Service {
	return &Service{repo: repo, patients: patients, tx: tx}
}

// Send delivers a message to a patient. Staff accounts cannot be targets.
func (s *Service) Send(ctx context.Context, patientID uuid.UUID, message string) (*Notification, error) {
	if err := validateMessage(message); err != nil {
		return nil, err
	}
	ok, err := s.patients.IsPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("check recipient: %w", err)
	}
	if !ok {
		return nil, ErrNotAPatient
	}
	n := &Notification{PatientID: patientID, Message: message}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}

// ListFor returns notifications visible to the caller: patients see their
// own, staff see everything.
func (s *Service) ListFor(ctx context.Context, ident *auth.Identity, limit, offset int) ([]*Notification, int, error) {
	if ident.Role == auth.RolePatient {
		return s.repo.ListByPatient(ctx, ident.AccountID, limit, offset)
	}
	return s.repo.ListAll(ctx, limit, offset)
}

// ViewFor is the patient inbox read: it returns the patient's notifications
// and marks them all read in the same transaction, so a crash between the two
// steps never leaves a half-updated inbox.
func (s *Service) ViewFor(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	var (
		list  []*Notification
		total int
	)
	err := s.tx.RunTx(ctx, func(ctx context.Context) error {
		var err error
		list, total, err = s.repo.ListByPatient(ctx, patientID, limit, offset)
		if err != nil {
			return err
		}
		return s.repo.MarkAllRead(ctx, patientID)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("view notifications: %w", err)
	}
	return list, total, nil
}

func (s *Service) UnreadCount(ctx context.Context, patientID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, patientID)
}
