package schedule

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hass/hass/pkg/timegrid"
)

// -- Mock Repository --

type mockAppointmentRepo struct {
	appts map[uuid.UUID]*Appointment
	order []uuid.UUID
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockAppointmentRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	m.appts[a.ID] = a
	m.order = append(m.order, a.ID)
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return a, nil
}

func (m *mockAppointmentRepo) Update(_ context.Context, a *Appointment) error {
	m.appts[a.ID] = a
	return nil
}

func (m *mockAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.appts, id)
	return nil
}

func (m *mockAppointmentRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, id := range m.order {
		if a, ok := m.appts[id]; ok && a.PatientID == patientID {
			result = append(result, a)
		}
	}
	return result, len(result), nil
}

func (m *mockAppointmentRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, id := range m.order {
		if a, ok := m.appts[id]; ok && a.DoctorID == doctorID {
			result = append(result, a)
		}
	}
	return result, len(result), nil
}

func (m *mockAppointmentRepo) ListByDepartment(_ context.Context, department string, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, id := range m.order {
		if a, ok := m.appts[id]; ok && a.Department == department {
			result = append(result, a)
		}
	}
	return result, len(result), nil
}

func (m *mockAppointmentRepo) ListForDay(_ context.Context, doctorID uuid.UUID, day time.Time) ([]*Appointment, error) {
	var result []*Appointment
	y, mo, d := day.Date()
	for _, id := range m.order {
		a, ok := m.appts[id]
		if !ok || a.DoctorID != doctorID || a.Status == StatusCancelled {
			continue
		}
		ay, amo, ad := a.StartTime.Date()
		if ay == y && amo == mo && ad == d {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockAppointmentRepo) Search(_ context.Context, _ map[string]string, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, id := range m.order {
		if a, ok := m.appts[id]; ok {
			result = append(result, a)
		}
	}
	return result, len(result), nil
}

func newTestService() *Service {
	return NewService(newMockAppointmentRepo())
}

func apptAt(doctorID uuid.UUID, day time.Time, hour, min, duration int) *Appointment {
	return &Appointment{
		PatientID:       uuid.New(),
		DoctorID:        doctorID,
		StartTime:       time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, time.UTC),
		DurationMinutes: duration,
	}
}

// -- Service Tests --

func TestCreateAppointment(t *testing.T) {
	svc := newTestService()
	a := apptAt(uuid.New(), time.Now(), 9, 0, 30)
	if err := svc.CreateAppointment(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID == uuid.Nil {
		t.Error("expected ID assigned")
	}
	if a.Status != StatusScheduled {
		t.Errorf("expected default status %q, got %q", StatusScheduled, a.Status)
	}
}

func TestCreateAppointment_MissingPatient(t *testing.T) {
	svc := newTestService()
	a := apptAt(uuid.New(), time.Now(), 9, 0, 30)
	a.PatientID = uuid.Nil
	if err := svc.CreateAppointment(context.Background(), a); err == nil {
		t.Error("expected error for missing patient_id")
	}
}

func TestCreateAppointment_MissingDoctor(t *testing.T) {
	svc := newTestService()
	a := apptAt(uuid.Nil, time.Now(), 9, 0, 30)
	if err := svc.CreateAppointment(context.Background(), a); err == nil {
		t.Error("expected error for missing doctor_id")
	}
}

func TestCreateAppointment_MissingStartTime(t *testing.T) {
	svc := newTestService()
	a := &Appointment{PatientID: uuid.New(), DoctorID: uuid.New(), DurationMinutes: 30}
	if err := svc.CreateAppointment(context.Background(), a); err == nil {
		t.Error("expected error for missing start_time")
	}
}

func TestCreateAppointment_InvalidStatus(t *testing.T) {
	svc := newTestService()
	a := apptAt(uuid.New(), time.Now(), 9, 0, 30)
	a.Status = "bogus"
	if err := svc.CreateAppointment(context.Background(), a); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestUpdateAppointment_InvalidStatus(t *testing.T) {
	svc := newTestService()
	a := apptAt(uuid.New(), time.Now(), 9, 0, 30)
	if err := svc.CreateAppointment(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a.Status = "archived"
	if err := svc.UpdateAppointment(context.Background(), a); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestUpdateAppointment_EmptyStatusKeepsCurrent(t *testing.T) {
	svc := newTestService()
	a := apptAt(uuid.New(), time.Now(), 9, 0, 30)
	if err := svc.CreateAppointment(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a.Status = StatusCheckedIn
	if err := svc.UpdateAppointment(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	room := "OR-2"
	update := &Appointment{
		ID:        a.ID,
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		Room:      &room,
	}
	if err := svc.UpdateAppointment(context.Background(), update); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.GetAppointment(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusCheckedIn {
		t.Errorf("expected status kept as %q, got %q", StatusCheckedIn, got.Status)
	}
	if got.StartTime.IsZero() {
		t.Error("expected start time kept, got zero")
	}
	if got.DurationMinutes != 30 {
		t.Errorf("expected duration kept as 30, got %d", got.DurationMinutes)
	}
	if got.Room == nil || *got.Room != "OR-2" {
		t.Error("expected room updated to OR-2")
	}
}

func TestUpdateAppointment_StatusTransition(t *testing.T) {
	svc := newTestService()
	a := apptAt(uuid.New(), time.Now(), 9, 0, 30)
	if err := svc.CreateAppointment(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a.Status = StatusCheckedIn
	if err := svc.UpdateAppointment(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := svc.GetAppointment(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusCheckedIn {
		t.Errorf("expected status %q, got %q", StatusCheckedIn, got.Status)
	}
}

// -- Day View Tests --

func TestDayView_Empty(t *testing.T) {
	svc := newTestService()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	view, err := svc.DayView(context.Background(), uuid.New(), day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.LaneCount != 1 {
		t.Errorf("expected lane count 1 for empty day, got %d", view.LaneCount)
	}
	if len(view.Entries) != 0 {
		t.Errorf("expected no entries, got %d", len(view.Entries))
	}
	if view.Axis.StartMinutes != timegrid.DefaultWindowStartMinutes || view.Axis.EndMinutes != timegrid.DefaultWindowEndMinutes {
		t.Errorf("expected default axis, got %d..%d", view.Axis.StartMinutes, view.Axis.EndMinutes)
	}
}

func TestDayView_OverlapSplitsLanes(t *testing.T) {
	svc := newTestService()
	doctorID := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	a1 := apptAt(doctorID, day, 9, 0, 60)
	a2 := apptAt(doctorID, day, 9, 30, 60)
	for _, a := range []*Appointment{a1, a2} {
		if err := svc.CreateAppointment(context.Background(), a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	view, err := svc.DayView(context.Background(), doctorID, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.LaneCount != 2 {
		t.Errorf("expected 2 lanes, got %d", view.LaneCount)
	}
	if len(view.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(view.Entries))
	}
	if view.Entries[0].Lane == view.Entries[1].Lane {
		t.Error("overlapping appointments placed in the same lane")
	}
}

func TestDayView_EntriesPairPlacementsWithAppointments(t *testing.T) {
	svc := newTestService()
	doctorID := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	a1 := apptAt(doctorID, day, 10, 0, 30)
	a2 := apptAt(doctorID, day, 14, 0, 45)
	for _, a := range []*Appointment{a1, a2} {
		if err := svc.CreateAppointment(context.Background(), a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	view, err := svc.DayView(context.Background(), doctorID, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(view.Entries))
	}
	if view.Entries[0].Appointment.ID != a1.ID {
		t.Error("first entry does not match first created appointment")
	}
	if got := view.Entries[0].StartOffsetMinutes; got != 10*60-view.Axis.StartMinutes {
		t.Errorf("expected start offset %d, got %d", 10*60-view.Axis.StartMinutes, got)
	}
	if got := view.Entries[1].EndOffsetMinutes - view.Entries[1].StartOffsetMinutes; got != 45 {
		t.Errorf("expected 45 minute span, got %d", got)
	}
}

func TestDayView_ExcludesCancelled(t *testing.T) {
	svc := newTestService()
	doctorID := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	a1 := apptAt(doctorID, day, 9, 0, 30)
	a2 := apptAt(doctorID, day, 9, 0, 30)
	for _, a := range []*Appointment{a1, a2} {
		if err := svc.CreateAppointment(context.Background(), a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	a2.Status = StatusCancelled
	if err := svc.UpdateAppointment(context.Background(), a2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view, err := svc.DayView(context.Background(), doctorID, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Entries) != 1 {
		t.Errorf("expected 1 entry after cancellation, got %d", len(view.Entries))
	}
	if view.LaneCount != 1 {
		t.Errorf("expected 1 lane after cancellation, got %d", view.LaneCount)
	}
}

func TestDayView_EarlyAppointmentExpandsAxis(t *testing.T) {
	svc := newTestService()
	doctorID := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	a := apptAt(doctorID, day, 7, 15, 30)
	if err := svc.CreateAppointment(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view, err := svc.DayView(context.Background(), doctorID, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Axis.StartMinutes != 7*60 {
		t.Errorf("expected axis start 420, got %d", view.Axis.StartMinutes)
	}
}
