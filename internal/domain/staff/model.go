package staff

import (
	"time"

	"github.com/google/uuid"
)

// Staff roles. These line up with the JWT role claims the API authorizes on.
const (
	RoleDoctor     = "doctor"
	RoleNurse      = "nurse"
	RolePharmacist = "pharmacist"
	RoleManager    = "manager"
	RoleAdmin      = "admin"
)

// Staff maps to the staff table.
type Staff struct {
	ID         uuid.UUID `db:"id" json:"id"`
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	Active     bool      `db:"active" json:"active"`
	NameFamily string    `db:"name_family" json:"name_family"`
	NameGiven  string    `db:"name_given" json:"name_given"`
	Role       string    `db:"role" json:"role"`
	Department string    `db:"department" json:"department"`
	Specialty  *string   `db:"specialty" json:"specialty,omitempty"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	Email      *string   `db:"email" json:"email,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
