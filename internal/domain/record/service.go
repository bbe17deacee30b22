package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrValidation wraps per-field rejections from Validate.
var ErrValidation = errors.New("observation validation failed")

// ValidationError carries the individual field rejections.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("observation validation failed: %d field(s) rejected", len(e.Fields))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput is one self-reported lab panel.
type CreateInput struct {
	Date        time.Time `json:"date"`
	Hgb         *float64  `json:"hgb"`
	Rbc         *float64  `json:"rbc"`
	Wbc         *float64  `json:"wbc"`
	Plt         *float64  `json:"plt"`
	Hct         *float64  `json:"hct"`
	Glucose     *float64  `json:"glucose"`
	Creatinine  *float64  `json:"creatinine"`
	Alt         *float64  `json:"alt"`
	Cholesterol *float64  `json:"cholesterol"`
	Crp         *float64  `json:"crp"`
}

func (s *Service) Create(ctx context.Context, patientID uuid.UUID, in CreateInput) (*Observation, error) {
	o := &Observation{
		PatientID:   patientID,
		Date:        in.Date,
		Hgb:         in.Hgb,
		Rbc:         in.Rbc,
		Wbc:         in.Wbc,
		Plt:         in.Plt,
		Hct:         in.Hct,
		Glucose:     in.Glucose,
		Creatinine:  in.Creatinine,
		Alt:         in.Alt,
		Cholesterol: in.Cholesterol,
		Crp:         in.Crp,
	}
	if o.Date.IsZero() {
		o.Date = time.Now().UTC()
	}
	if fields := Validate(o); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create observation: %w", err)
	}
	return o, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Observation, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}
