package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotAPatient is returned when a notification targets an account that
	// is not a patient.
	ErrNotAPatient = errors.New("notification recipient is not a patient")

	// ErrEmptyMessage is returned for a blank notification body.
	ErrEmptyMessage = errors.New("notification message is empty")

	// ErrMessageTooLong is returned when the body exceeds MaxMessageLen.
	ErrMessageTooLong = errors.New("notification message too long")
)

// MaxMessageLen bounds the notification body, in bytes.
const MaxMessageLen = 500

// Notification is a one-way message delivered to a patient account. The read
// flag is monotonic: once set it never reverts.
type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PatientID uuid.UUID `json:"patient_id" db:"patient_id"`
	Message   string    `json:"message" db:"message"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func validateMessage(msg string) error {
	if msg == "" {
		return ErrEmptyMessage
	}
	if len(msg) > MaxMessageLen {
		return ErrMessageTooLong
	}
	return nil
}
