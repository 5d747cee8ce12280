package ward

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	wards WardRepository
	beds  BedRepository
}

func NewService(wards WardRepository, beds BedRepository) *Service {
	return &Service{wards: wards, beds: beds}
}

func (s *Service) CreateWard(ctx context.Context, w *Ward) error {
	if w.Name == "" {
		return fmt.Errorf("ward name is required")
	}
	if w.Department == "" {
		return fmt.Errorf("department is required")
	}
	return s.wards.Create(ctx, w)
}

func (s *Service) GetWard(ctx context.Context, id uuid.UUID) (*Ward, error) {
	return s.wards.GetByID(ctx, id)
}

func (s *Service) UpdateWard(ctx context.Context, w *Ward) error {
	return s.wards.Update(ctx, w)
}

func (s *Service) DeleteWard(ctx context.Context, id uuid.UUID) error {
	beds, err := s.beds.ListByWard(ctx, id)
	if err != nil {
		return err
	}
	for _, b := range beds {
		if b.Status == BedOccupied {
			return fmt.Errorf("ward has occupied beds")
		}
	}
	return s.wards.Delete(ctx, id)
}

func (s *Service) ListWards(ctx context.Context, limit, offset int) ([]*Ward, int, error) {
	return s.wards.List(ctx, limit, offset)
}

func (s *Service) AddBed(ctx context.Context, b *Bed) error {
	if b.WardID == uuid.Nil {
		return fmt.Errorf("ward_id is required")
	}
	if b.Label == "" {
		return fmt.Errorf("bed label is required")
	}
	if _, err := s.wards.GetByID(ctx, b.WardID); err != nil {
		return fmt.Errorf("ward not found")
	}
	b.Status = BedAvailable
	return s.beds.Create(ctx, b)
}

func (s *Service) ListBeds(ctx context.Context, wardID uuid.UUID) ([]*Bed, error) {
	return s.beds.ListByWard(ctx, wardID)
}

// AssignBed puts a patient into an available bed. Occupied and maintenance
// beds are rejected so two patients can never share one bed record.
func (s *Service) AssignBed(ctx context.Context, bedID, patientID uuid.UUID) (*Bed, error) {
	b, err := s.beds.GetByID(ctx, bedID)
	if err != nil {
		return nil, err
	}
	if b.Status != BedAvailable {
		return nil, fmt.Errorf("bed is %s", b.Status)
	}
	now := time.Now()
	b.Status = BedOccupied
	b.PatientID = &patientID
	b.AssignedAt = &now
	if err := s.beds.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) ReleaseBed(ctx context.Context, bedID uuid.UUID) (*Bed, error) {
	b, err := s.beds.GetByID(ctx, bedID)
	if err != nil {
		return nil, err
	}
	if b.Status != BedOccupied {
		return nil, fmt.Errorf("bed is not occupied")
	}
	b.Status = BedAvailable
	b.PatientID = nil
	b.AssignedAt = nil
	if err := s.beds.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// SetBedMaintenance takes an unoccupied bed out of service, or returns a
// maintenance bed to the available pool.
func (s *Service) SetBedMaintenance(ctx context.Context, bedID uuid.UUID, underMaintenance bool) (*Bed, error) {
	b, err := s.beds.GetByID(ctx, bedID)
	if err != nil {
		return nil, err
	}
	if b.Status == BedOccupied {
		return nil, fmt.Errorf("occupied beds cannot change maintenance state")
	}
	if underMaintenance {
		b.Status = BedMaintenance
	} else {
		b.Status = BedAvailable
	}
	if err := s.beds.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) Occupancy(ctx context.Context, wardID uuid.UUID) (*OccupancySummary, error) {
	return s.beds.Occupancy(ctx, wardID)
}
