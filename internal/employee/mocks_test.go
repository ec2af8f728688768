package employee

import (
	"context"

	"github.com/hitoshi/teamify/internal/model"
	"github.com/hitoshi/teamify/internal/repository"
)

// mockEmployeeRepo はEmployeeRepositoryのモック。
type mockEmployeeRepo struct {
	findByIDFn     func(ctx context.Context, employeeID string) (*model.Employee, error)
	findByUserIDFn func(ctx context.Context, userID string) (*model.Employee, error)
	createFn       func(ctx context.Context, emp *model.Employee) error
	updateFn       func(ctx context.Context, emp *model.Employee) error
	updateStatusFn func(ctx context.Context, employeeID string, status model.EmploymentStatus) error
	listFn         func(ctx context.Context) ([]*model.Employee, error)
	searchFn       func(ctx context.Context, query string) ([]*model.Employee, error)
	listByDeptFn   func(ctx context.Context, departmentID string) ([]*model.Employee, error)
}

func (m *mockEmployeeRepo) FindByID(ctx context.Context, employeeID string) (*model.Employee, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, employeeID)
	}
	return nil, nil
}

func (m *mockEmployeeRepo) FindByUserID(ctx context.Context, userID string) (*model.Employee, error) {
	if m.findByUserIDFn != nil {
		return m.findByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockEmployeeRepo) Insert(ctx context.Context, emp *model.Employee) (bool, error) {
	return false, nil
}

func (m *mockEmployeeRepo) Create(ctx context.Context, emp *model.Employee) error {
	if m.createFn != nil {
		return m.createFn(ctx, emp)
	}
	return nil
}

func (m *mockEmployeeRepo) Update(ctx context.Context, emp *model.Employee) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, emp)
	}
	return nil
}

func (m *mockEmployeeRepo) UpdateStatus(ctx context.Context, employeeID string, status model.EmploymentStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, employeeID, status)
	}
	return nil
}

func (m *mockEmployeeRepo) List(ctx context.Context) ([]*model.Employee, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockEmployeeRepo) Search(ctx context.Context, query string) ([]*model.Employee, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query)
	}
	return nil, nil
}

func (m *mockEmployeeRepo) ListByDepartment(ctx context.Context, departmentID string) ([]*model.Employee, error) {
	if m.listByDeptFn != nil {
		return m.listByDeptFn(ctx, departmentID)
	}
	return nil, nil
}

func (m *mockEmployeeRepo) CountByStatus(ctx context.Context) (map[model.EmploymentStatus]int, error) {
	return map[model.EmploymentStatus]int{}, nil
}

func (m *mockEmployeeRepo) CountAll(ctx context.Context) (int, error) { return 0, nil }

// mockOrgRepo はOrgRepositoryのモック。
type mockOrgRepo struct {
	listDepartmentsFn  func(ctx context.Context) ([]*model.Department, error)
	findDepartmentFn   func(ctx context.Context, departmentID string) (*model.Department, error)
	listPositionsFn    func(ctx context.Context) ([]*model.Position, error)
	findPositionFn     func(ctx context.Context, positionID string) (*model.Position, error)
	listPosByDeptFn    func(ctx context.Context, departmentID string) ([]*model.Position, error)
	countEmpsPerDeptFn func(ctx context.Context) (map[string]int, error)
}

func (m *mockOrgRepo) ListDepartments(ctx context.Context) ([]*model.Department, error) {
	if m.listDepartmentsFn != nil {
		return m.listDepartmentsFn(ctx)
	}
	return nil, nil
}

func (m *mockOrgRepo) FindDepartmentByID(ctx context.Context, departmentID string) (*model.Department, error) {
	if m.findDepartmentFn != nil {
		return m.findDepartmentFn(ctx, departmentID)
	}
	return nil, nil
}

func (m *mockOrgRepo) ListPositions(ctx context.Context) ([]*model.Position, error) {
	if m.listPositionsFn != nil {
		return m.listPositionsFn(ctx)
	}
	return nil, nil
}

func (m *mockOrgRepo) FindPositionByID(ctx context.Context, positionID string) (*model.Position, error) {
	if m.findPositionFn != nil {
		return m.findPositionFn(ctx, positionID)
	}
	return nil, nil
}

func (m *mockOrgRepo) ListPositionsByDepartment(ctx context.Context, departmentID string) ([]*model.Position, error) {
	if m.listPosByDeptFn != nil {
		return m.listPosByDeptFn(ctx, departmentID)
	}
	return nil, nil
}

func (m *mockOrgRepo) CountEmployeesPerDepartment(ctx context.Context) (map[string]int, error) {
	if m.countEmpsPerDeptFn != nil {
		return m.countEmpsPerDeptFn(ctx)
	}
	return map[string]int{}, nil
}

// compile-time interface checks
var (
	_ repository.EmployeeRepository = (*mockEmployeeRepo)(nil)
	_ repository.OrgRepository      = (*mockOrgRepo)(nil)
)
