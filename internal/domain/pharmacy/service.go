package pharmacy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	prescriptions PrescriptionRepository
}

func NewService(prescriptions PrescriptionRepository) *Service {
	return &Service{prescriptions: prescriptions}
}

func (s *Service) CreatePrescription(ctx context.Context, p *Prescription) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if p.Medication == "" {
		return fmt.Errorf("medication is required")
	}
	if p.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	p.Status = StatusPending
	return s.prescriptions.Create(ctx, p)
}

func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.prescriptions.GetByID(ctx, id)
}

// Dispense marks a pending prescription as handed out. Dispensing twice or
// dispensing a cancelled prescription is rejected.
func (s *Service) Dispense(ctx context.Context, id uuid.UUID, pharmacistID string) (*Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusPending {
		return nil, fmt.Errorf("prescription is %s, only pending prescriptions can be dispensed", p.Status)
	}
	now := time.Now()
	p.Status = StatusDispensed
	p.DispensedBy = &pharmacistID
	p.DispensedAt = &now
	if err := s.prescriptions.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == StatusDispensed {
		return nil, fmt.Errorf("dispensed prescriptions cannot be cancelled")
	}
	p.Status = StatusCancelled
	if err := s.prescriptions.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListPrescriptionsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListPrescriptionsByStatus(ctx context.Context, status string, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.ListByStatus(ctx, status, limit, offset)
}

func (s *Service) ListPrescriptions(ctx context.Context, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.List(ctx, limit, offset)
}
