package staff

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

var validRoles = map[string]bool{
	RoleDoctor: true, RoleNurse: true, RolePharmacist: true,
	RoleManager: true, RoleAdmin: true,
}

type Service struct {
	staff StaffRepository
}

func NewService(staff StaffRepository) *Service {
	return &Service{staff: staff}
}

func (s *Service) CreateStaff(ctx context.Context, st *Staff) error {
	if st.EmployeeID == "" {
		return fmt.Errorf("employee_id is required")
	}
	if st.NameFamily == "" && st.NameGiven == "" {
		return fmt.Errorf("staff name is required")
	}
	if !validRoles[st.Role] {
		return fmt.Errorf("invalid role: %s", st.Role)
	}
	if existing, err := s.staff.GetByEmployeeID(ctx, st.EmployeeID); err == nil && existing != nil {
		return fmt.Errorf("employee_id %s already registered", st.EmployeeID)
	}
	st.Active = true
	return s.staff.Create(ctx, st)
}

func (s *Service) GetStaff(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return s.staff.GetByID(ctx, id)
}

// UpdateStaff replaces the stored record. An empty role keeps the current
// one so a partial update cannot blank it.
func (s *Service) UpdateStaff(ctx context.Context, st *Staff) error {
	current, err := s.staff.GetByID(ctx, st.ID)
	if err != nil {
		return err
	}
	if st.Role == "" {
		st.Role = current.Role
	}
	if !validRoles[st.Role] {
		return fmt.Errorf("invalid role: %s", st.Role)
	}
	return s.staff.Update(ctx, st)
}

func (s *Service) DeactivateStaff(ctx context.Context, id uuid.UUID) error {
	st, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return err
	}
	st.Active = false
	return s.staff.Update(ctx, st)
}

func (s *Service) ListStaff(ctx context.Context, limit, offset int) ([]*Staff, int, error) {
	return s.staff.List(ctx, limit, offset)
}

func (s *Service) ListStaffByDepartment(ctx context.Context, department string, limit, offset int) ([]*Staff, int, error) {
	return s.staff.ListByDepartment(ctx, department, limit, offset)
}

func (s *Service) ListStaffByRole(ctx context.Context, role string, limit, offset int) ([]*Staff, int, error) {
	return s.staff.ListByRole(ctx, role, limit, offset)
}
