package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table.
type Patient struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	MRN               string     `db:"mrn" json:"mrn"`
	Active            bool       `db:"active" json:"active"`
	NameFamily        string     `db:"name_family" json:"name_family"`
	NameGiven         string     `db:"name_given" json:"name_given"`
	Gender            *string    `db:"gender" json:"gender,omitempty"`
	BirthDate         *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	BloodType         *string    `db:"blood_type" json:"blood_type,omitempty"`
	Phone             *string    `db:"phone" json:"phone,omitempty"`
	Email             *string    `db:"email" json:"email,omitempty"`
	AddressLine       *string    `db:"address_line" json:"address_line,omitempty"`
	AddressCity       *string    `db:"address_city" json:"address_city,omitempty"`
	AddressPostalCode *string    `db:"address_postal_code" json:"address_postal_code,omitempty"`
	EmergencyContact  *string    `db:"emergency_contact" json:"emergency_contact,omitempty"`
	EmergencyPhone    *string    `db:"emergency_phone" json:"emergency_phone,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName renders "Given Family" for display lists.
func (p *Patient) FullName() string {
	if p.NameGiven == "" {
		return p.NameFamily
	}
	if p.NameFamily == "" {
		return p.NameGiven
	}
	return p.NameGiven + " " + p.NameFamily
}
