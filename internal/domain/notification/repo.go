package notification

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence port for notifications. Listing orders by
// created_at descending with id as tie-break so pages are stable.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Notification, int, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Notification, int, error)
	CountUnread(ctx context.Context, patientID uuid.UUID) (int, error)
	MarkAllRead(ctx context.Context, patientID uuid.UUID) error
}
