package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

// Prescription statuses.
const (
	StatusPending   = "pending"
	StatusDispensed = "dispensed"
	StatusCancelled = "cancelled"
)

// Prescription maps to the prescription table.
type Prescription struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID     uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	Medication   string     `db:"medication" json:"medication"`
	Dosage       string     `db:"dosage" json:"dosage"`
	Quantity     int        `db:"quantity" json:"quantity"`
	Instructions *string    `db:"instructions" json:"instructions,omitempty"`
	Status       string     `db:"status" json:"status"`
	DispensedBy  *string    `db:"dispensed_by" json:"dispensed_by,omitempty"`
	DispensedAt  *time.Time `db:"dispensed_at" json:"dispensed_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
