package staff

import (
	"context"

	"github.com/google/uuid"
)

type StaffRepository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*Staff, error)
	Update(ctx context.Context, s *Staff) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Staff, int, error)
	ListByDepartment(ctx context.Context, department string, limit, offset int) ([]*Staff, int, error)
	ListByRole(ctx context.Context, role string, limit, offset int) ([]*Staff, int, error)
}
