package ward

import (
	"time"

	"github.com/google/uuid"
)

// Bed statuses.
const (
	BedAvailable   = "available"
	BedOccupied    = "occupied"
	BedMaintenance = "maintenance"
)

// Ward maps to the ward table.
type Ward struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Department string    `db:"department" json:"department"`
	Floor      *int      `db:"floor" json:"floor,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Bed maps to the bed table.
type Bed struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	WardID     uuid.UUID  `db:"ward_id" json:"ward_id"`
	Label      string     `db:"label" json:"label"`
	Status     string     `db:"status" json:"status"`
	PatientID  *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	AssignedAt *time.Time `db:"assigned_at" json:"assigned_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// OccupancySummary aggregates bed counts for one ward.
type OccupancySummary struct {
	WardID      uuid.UUID `json:"ward_id"`
	WardName    string    `json:"ward_name"`
	Total       int       `json:"total"`
	Occupied    int       `json:"occupied"`
	Available   int       `json:"available"`
	Maintenance int       `json:"maintenance"`
}

// OccupancyRate is occupied beds over usable beds. Beds under maintenance
// do not count toward capacity.
func (o *OccupancySummary) OccupancyRate() float64 {
	usable := o.Total - o.Maintenance
	if usable <= 0 {
		return 0
	}
	return float64(o.Occupied) / float64(usable)
}
