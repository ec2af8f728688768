package payroll

import (
	"context"
	"time"

	"github.com/hitoshi/teamify/internal/model"
	"github.com/hitoshi/teamify/internal/repository"
)

// mockPayrollRepo はPayrollRepositoryのモック。
type mockPayrollRepo struct {
	createFn                      func(ctx context.Context, p *model.Payroll) error
	findByIDFn                    func(ctx context.Context, payrollID string) (*model.Payroll, error)
	updateAmountsFn               func(ctx context.Context, p *model.Payroll) (bool, error)
	markProcessedFn               func(ctx context.Context, payrollID string, method model.PaymentMethod, txRef string) (bool, error)
	markPaidFn                    func(ctx context.Context, payrollID string, paymentDate time.Time) (bool, error)
	listByEmployeeFn              func(ctx context.Context, employeeID string) ([]*model.Payroll, error)
	listByPeriodFn                func(ctx context.Context, start, end time.Time) ([]*model.Payroll, error)
	listEmployeesWithoutPayrollFn func(ctx context.Context, periodStart, periodEnd time.Time) ([]*model.Employee, error)
}

func (m *mockPayrollRepo) Create(ctx context.Context, p *model.Payroll) error {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return nil
}

func (m *mockPayrollRepo) FindByID(ctx context.Context, payrollID string) (*model.Payroll, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, payrollID)
	}
	return nil, nil
}

func (m *mockPayrollRepo) UpdateAmounts(ctx context.Context, p *model.Payroll) (bool, error) {
	if m.updateAmountsFn != nil {
		return m.updateAmountsFn(ctx, p)
	}
	return true, nil
}

func (m *mockPayrollRepo) MarkProcessed(ctx context.Context, payrollID string, method model.PaymentMethod, txRef string) (bool, error) {
	if m.markProcessedFn != nil {
		return m.markProcessedFn(ctx, payrollID, method, txRef)
	}
	return true, nil
}

func (m *mockPayrollRepo) MarkPaid(ctx context.Context, payrollID string, paymentDate time.Time) (bool, error) {
	if m.markPaidFn != nil {
		return m.markPaidFn(ctx, payrollID, paymentDate)
	}
	return true, nil
}

func (m *mockPayrollRepo) List(ctx context.Context) ([]*model.Payroll, error) { return nil, nil }

func (m *mockPayrollRepo) ListByEmployee(ctx context.Context, employeeID string) ([]*model.Payroll, error) {
	if m.listByEmployeeFn != nil {
		return m.listByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (m *mockPayrollRepo) ListByPeriod(ctx context.Context, start, end time.Time) ([]*model.Payroll, error) {
	if m.listByPeriodFn != nil {
		return m.listByPeriodFn(ctx, start, end)
	}
	return nil, nil
}

func (m *mockPayrollRepo) ListEmployeesWithoutPayroll(ctx context.Context, periodStart, periodEnd time.Time) ([]*model.Employee, error) {
	if m.listEmployeesWithoutPayrollFn != nil {
		return m.listEmployeesWithoutPayrollFn(ctx, periodStart, periodEnd)
	}
	return nil, nil
}

// mockEmployeeRepo はEmployeeRepositoryのモック。存在確認のみに使う。
type mockEmployeeRepo struct {
	findByIDFn func(ctx context.Context, employeeID string) (*model.Employee, error)
}

func (m *mockEmployeeRepo) FindByID(ctx context.Context, employeeID string) (*model.Employee, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, employeeID)
	}
	return &model.Employee{EmployeeID: employeeID}, nil
}

func (m *mockEmployeeRepo) FindByUserID(ctx context.Context, userID string) (*model.Employee, error) {
	return nil, nil
}
func (m *mockEmployeeRepo) Insert(ctx context.Context, emp *model.Employee) (bool, error) {
	return false, nil
}
func (m *mockEmployeeRepo) Create(ctx context.Context, emp *model.Employee) error { return nil }
func (m *mockEmployeeRepo) Update(ctx context.Context, emp *model.Employee) error { return nil }
func (m *mockEmployeeRepo) UpdateStatus(ctx context.Context, employeeID string, status model.EmploymentStatus) error {
	return nil
}
func (m *mockEmployeeRepo) List(ctx context.Context) ([]*model.Employee, error) { return nil, nil }
func (m *mockEmployeeRepo) Search(ctx context.Context, query string) ([]*model.Employee, error) {
	return nil, nil
}
func (m *mockEmployeeRepo) ListByDepartment(ctx context.Context, departmentID string) ([]*model.Employee, error) {
	return nil, nil
}
func (m *mockEmployeeRepo) CountByStatus(ctx context.Context) (map[model.EmploymentStatus]int, error) {
	return map[model.EmploymentStatus]int{}, nil
}
func (m *mockEmployeeRepo) CountAll(ctx context.Context) (int, error) { return 0, nil }

// compile-time interface checks
var (
	_ repository.PayrollRepository  = (*mockPayrollRepo)(nil)
	_ repository.EmployeeRepository = (*mockEmployeeRepo)(nil)
)
