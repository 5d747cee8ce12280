package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/hass/hass/pkg/timegrid"
)

// Appointment statuses.
const (
	StatusScheduled  = "scheduled"
	StatusCheckedIn  = "checked-in"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no-show"
)

// Appointment maps to the appointment table.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Department      string    `db:"department" json:"department"`
	Room            *string   `db:"room" json:"room,omitempty"`
	Reason          *string   `db:"reason" json:"reason,omitempty"`
	StartTime       time.Time `db:"start_time" json:"start_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Status          string    `db:"status" json:"status"`
	Note            *string   `db:"note" json:"note,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// EndTime returns the appointment's end, using the same duration floor the
// day view applies so zero-length bookings still occupy visible time.
func (a *Appointment) EndTime() time.Time {
	dur := a.DurationMinutes
	if dur < timegrid.MinDurationMinutes {
		dur = timegrid.MinDurationMinutes
	}
	return a.StartTime.Add(time.Duration(dur) * time.Minute)
}

// toGridEvent converts the appointment into the layout engine's input form.
func (a *Appointment) toGridEvent() timegrid.Event {
	return timegrid.Event{
		ID:              a.ID.String(),
		Start:           a.StartTime,
		DurationMinutes: a.DurationMinutes,
	}
}

// DayView is the rendered day schedule for one doctor: the time axis, grid
// ticks, and each appointment with its computed lane placement.
type DayView struct {
	Date      string          `json:"date"`
	DoctorID  uuid.UUID       `json:"doctor_id"`
	Axis      timegrid.Axis   `json:"axis"`
	LaneCount int             `json:"lane_count"`
	Ticks     []timegrid.Tick `json:"ticks"`
	Entries   []DayViewEntry  `json:"entries"`
}

// DayViewEntry pairs an appointment with its lane placement.
type DayViewEntry struct {
	Appointment        *Appointment `json:"appointment"`
	Lane               int          `json:"lane"`
	StartOffsetMinutes int          `json:"start_offset_minutes"`
	EndOffsetMinutes   int          `json:"end_offset_minutes"`
}
