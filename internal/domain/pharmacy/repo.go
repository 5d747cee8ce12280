package pharmacy

import (
	"context"

	"github.com/google/uuid"
)

type PrescriptionRepository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Prescription, int, error)
	List(ctx context.Context, limit, offset int) ([]*Prescription, int, error)
}
