package record

import (
	"time"

	"github.com/google/uuid"
)

// Observation is a single dated panel of lab values for a patient. Records
// are append-only; every value field is optional.
type Observation struct {
	ID          uuid.UUID `json:"id" db:"id"`
	PatientID   uuid.UUID `json:"patient_id" db:"patient_id"`
	Date        time.Time `json:"date" db:"date"`
	Hgb         *float64  `json:"hgb" db:"hgb"`
	Rbc         *float64  `json:"rbc" db:"rbc"`
	Wbc         *float64  `json:"wbc" db:"wbc"`
	Plt         *float64  `json:"plt" db:"plt"`
	Hct         *float64  `json:"hct" db:"hct"`
	Glucose     *float64  `json:"glucose" db:"glucose"`
	Creatinine  *float64  `json:"creatinine" db:"creatinine"`
	Alt         *float64  `json:"alt" db:"alt"`
	Cholesterol *float64  `json:"cholesterol" db:"cholesterol"`
	Crp         *float64  `json:"crp" db:"crp"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
