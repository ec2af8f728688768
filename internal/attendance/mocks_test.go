package attendance

import (
	"context"
	"time"

	"github.com/hitoshi/teamify/internal/model"
	"github.com/hitoshi/teamify/internal/repository"
)

// mockAttendanceRepo はAttendanceRepositoryのモック。
type mockAttendanceRepo struct {
	upsertFn              func(ctx context.Context, att *model.Attendance) (*model.Attendance, error)
	findByIDFn            func(ctx context.Context, attendanceID string) (*model.Attendance, error)
	updateFn              func(ctx context.Context, att *model.Attendance) error
	listByDateFn          func(ctx context.Context, date time.Time) ([]*model.Attendance, error)
	listByEmployeeRangeFn func(ctx context.Context, employeeID string, start, end time.Time) ([]*model.Attendance, error)
	listHolidaysFn        func(ctx context.Context, start, end time.Time) ([]*model.Holiday, error)
}

func (m *mockAttendanceRepo) Upsert(ctx context.Context, att *model.Attendance) (*model.Attendance, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, att)
	}
	return att, nil
}

func (m *mockAttendanceRepo) FindByID(ctx context.Context, attendanceID string) (*model.Attendance, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, attendanceID)
	}
	return nil, nil
}

func (m *mockAttendanceRepo) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*model.Attendance, error) {
	return nil, nil
}

func (m *mockAttendanceRepo) Update(ctx context.Context, att *model.Attendance) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, att)
	}
	return nil
}

func (m *mockAttendanceRepo) ListByDate(ctx context.Context, date time.Time) ([]*model.Attendance, error) {
	if m.listByDateFn != nil {
		return m.listByDateFn(ctx, date)
	}
	return nil, nil
}

func (m *mockAttendanceRepo) ListByEmployeeRange(ctx context.Context, employeeID string, start, end time.Time) ([]*model.Attendance, error) {
	if m.listByEmployeeRangeFn != nil {
		return m.listByEmployeeRangeFn(ctx, employeeID, start, end)
	}
	return nil, nil
}

func (m *mockAttendanceRepo) CountByStatusOnDate(ctx context.Context, date time.Time) (map[model.AttendanceStatus]int, error) {
	return map[model.AttendanceStatus]int{}, nil
}

func (m *mockAttendanceRepo) ListHolidaysBetween(ctx context.Context, start, end time.Time) ([]*model.Holiday, error) {
	if m.listHolidaysFn != nil {
		return m.listHolidaysFn(ctx, start, end)
	}
	return nil, nil
}

// mockEmployeeRepo はEmployeeRepositoryのモック。勤怠サービスは存在確認のみに使う。
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
	_ repository.AttendanceRepository = (*mockAttendanceRepo)(nil)
	_ repository.EmployeeRepository   = (*mockEmployeeRepo)(nil)
)
