package record

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence port for observations. The store is
// append-only; there is no update or delete.
type Repository interface {
	Create(ctx context.Context, o *Observation) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Observation, int, error)
}
