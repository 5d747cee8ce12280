package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hass/hass/pkg/timegrid"
)

type Service struct {
	appointments AppointmentRepository
}

func NewService(appointments AppointmentRepository) *Service {
	return &Service{appointments: appointments}
}

var validAppointmentStatuses = map[string]bool{
	StatusScheduled: true, StatusCheckedIn: true, StatusInProgress: true,
	StatusCompleted: true, StatusCancelled: true, StatusNoShow: true,
}

func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if a.StartTime.IsZero() {
		return fmt.Errorf("start_time is required")
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if !validAppointmentStatuses[a.Status] {
		return fmt.Errorf("invalid appointment status: %s", a.Status)
	}
	return s.appointments.Create(ctx, a)
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// UpdateAppointment replaces the stored appointment. Fields the caller left
// empty keep their current value so a partial update cannot blank the status
// or zero the time slot.
func (s *Service) UpdateAppointment(ctx context.Context, a *Appointment) error {
	current, err := s.appointments.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	if a.Status == "" {
		a.Status = current.Status
	}
	if !validAppointmentStatuses[a.Status] {
		return fmt.Errorf("invalid appointment status: %s", a.Status)
	}
	if a.StartTime.IsZero() {
		a.StartTime = current.StartTime
	}
	if a.DurationMinutes == 0 {
		a.DurationMinutes = current.DurationMinutes
	}
	return s.appointments.Update(ctx, a)
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	return s.appointments.Delete(ctx, id)
}

func (s *Service) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) ListAppointmentsByDepartment(ctx context.Context, department string, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByDepartment(ctx, department, limit, offset)
}

func (s *Service) SearchAppointments(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.Search(ctx, params, limit, offset)
}

// DayView loads one doctor's appointments for the given day and lays them
// out on the time grid. Overlapping appointments land in separate lanes; an
// empty day still yields the default axis window so the grid renders.
func (s *Service) DayView(ctx context.Context, doctorID uuid.UUID, day time.Time) (*DayView, error) {
	if doctorID == uuid.Nil {
		return nil, fmt.Errorf("doctor_id is required")
	}

	appointments, err := s.appointments.ListForDay(ctx, doctorID, day)
	if err != nil {
		return nil, fmt.Errorf("list appointments for day: %w", err)
	}

	events := make([]timegrid.Event, len(appointments))
	for i, a := range appointments {
		events[i] = a.toGridEvent()
	}

	layout := timegrid.BuildDayLayout(day, events)

	entries := make([]DayViewEntry, len(appointments))
	for i, p := range layout.Placements {
		entries[i] = DayViewEntry{
			Appointment:        appointments[i],
			Lane:               p.Lane,
			StartOffsetMinutes: p.StartOffsetMinutes,
			EndOffsetMinutes:   p.EndOffsetMinutes,
		}
	}

	return &DayView{
		Date:      day.Format("2006-01-02"),
		DoctorID:  doctorID,
		Axis:      layout.Axis,
		LaneCount: layout.LaneCount,
		Ticks:     layout.Ticks,
		Entries:   entries,
	}, nil
}
