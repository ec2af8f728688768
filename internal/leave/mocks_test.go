package leave

import (
	"context"
	"time"

	"github.com/hitoshi/teamify/internal/model"
	"github.com/hitoshi/teamify/internal/repository"
)

// mockLeaveRepo はLeaveRepositoryのモック。
type mockLeaveRepo struct {
	listTypesFn              func(ctx context.Context) ([]*model.LeaveType, error)
	findTypeByIDFn           func(ctx context.Context, leaveTypeID string) (*model.LeaveType, error)
	listBalancesFn           func(ctx context.Context, employeeID string, year int) ([]*model.LeaveBalance, error)
	findBalanceFn            func(ctx context.Context, employeeID, leaveTypeID string, year int) (*model.LeaveBalance, error)
	upsertBalanceFn          func(ctx context.Context, balance *model.LeaveBalance) error
	addUsedDaysFn            func(ctx context.Context, employeeID, leaveTypeID string, year int, days float64) error
	createRequestFn          func(ctx context.Context, req *model.LeaveRequest) error
	findRequestByIDFn        func(ctx context.Context, requestID string) (*model.LeaveRequest, error)
	listRequestsFn           func(ctx context.Context) ([]*model.LeaveRequest, error)
	listRequestsByStatusFn   func(ctx context.Context, status model.LeaveStatus) ([]*model.LeaveRequest, error)
	listRequestsByEmployeeFn func(ctx context.Context, employeeID string) ([]*model.LeaveRequest, error)
	reviewRequestFn          func(ctx context.Context, requestID string, status model.LeaveStatus, reviewerID, comments string, reviewedAt time.Time) (bool, error)
}

func (m *mockLeaveRepo) ListTypes(ctx context.Context) ([]*model.LeaveType, error) {
	if m.listTypesFn != nil {
		return m.listTypesFn(ctx)
	}
	return nil, nil
}

func (m *mockLeaveRepo) FindTypeByID(ctx context.Context, leaveTypeID string) (*model.LeaveType, error) {
	if m.findTypeByIDFn != nil {
		return m.findTypeByIDFn(ctx, leaveTypeID)
	}
	return nil, nil
}

func (m *mockLeaveRepo) ListBalances(ctx context.Context, employeeID string, year int) ([]*model.LeaveBalance, error) {
	if m.listBalancesFn != nil {
		return m.listBalancesFn(ctx, employeeID, year)
	}
	return nil, nil
}

func (m *mockLeaveRepo) FindBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (*model.LeaveBalance, error) {
	if m.findBalanceFn != nil {
		return m.findBalanceFn(ctx, employeeID, leaveTypeID, year)
	}
	return nil, nil
}

func (m *mockLeaveRepo) UpsertBalance(ctx context.Context, balance *model.LeaveBalance) error {
	if m.upsertBalanceFn != nil {
		return m.upsertBalanceFn(ctx, balance)
	}
	return nil
}

func (m *mockLeaveRepo) AddUsedDays(ctx context.Context, employeeID, leaveTypeID string, year int, days float64) error {
	if m.addUsedDaysFn != nil {
		return m.addUsedDaysFn(ctx, employeeID, leaveTypeID, year, days)
	}
	return nil
}

func (m *mockLeaveRepo) CreateRequest(ctx context.Context, req *model.LeaveRequest) error {
	if m.createRequestFn != nil {
		return m.createRequestFn(ctx, req)
	}
	return nil
}

func (m *mockLeaveRepo) FindRequestByID(ctx context.Context, requestID string) (*model.LeaveRequest, error) {
	if m.findRequestByIDFn != nil {
		return m.findRequestByIDFn(ctx, requestID)
	}
	return nil, nil
}

func (m *mockLeaveRepo) ListRequests(ctx context.Context) ([]*model.LeaveRequest, error) {
	if m.listRequestsFn != nil {
		return m.listRequestsFn(ctx)
	}
	return nil, nil
}

func (m *mockLeaveRepo) ListRequestsByStatus(ctx context.Context, status model.LeaveStatus) ([]*model.LeaveRequest, error) {
	if m.listRequestsByStatusFn != nil {
		return m.listRequestsByStatusFn(ctx, status)
	}
	return nil, nil
}

func (m *mockLeaveRepo) ListRequestsByEmployee(ctx context.Context, employeeID string) ([]*model.LeaveRequest, error) {
	if m.listRequestsByEmployeeFn != nil {
		return m.listRequestsByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (m *mockLeaveRepo) CountRequestsByStatus(ctx context.Context, status model.LeaveStatus) (int, error) {
	return 0, nil
}

func (m *mockLeaveRepo) ReviewRequest(ctx context.Context, requestID string, status model.LeaveStatus, reviewerID, comments string, reviewedAt time.Time) (bool, error) {
	if m.reviewRequestFn != nil {
		return m.reviewRequestFn(ctx, requestID, status, reviewerID, comments, reviewedAt)
	}
	return true, nil
}

// mockEmployeeRepo はEmployeeRepositoryのモック。通知先の解決のみに使う。
type mockEmployeeRepo struct {
	findByIDFn func(ctx context.Context, employeeID string) (*model.Employee, error)
}

func (m *mockEmployeeRepo) FindByID(ctx context.Context, employeeID string) (*model.Employee, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, employeeID)
	}
	return nil, nil
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

// mockNotificationRepo はNotificationRepositoryのモック。
type mockNotificationRepo struct {
	createFn func(ctx context.Context, n *model.Notification) error
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	if m.createFn != nil {
		return m.createFn(ctx, n)
	}
	return nil
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*model.Notification, error) {
	return nil, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, notificationID string, at time.Time) error {
	return nil
}

func (m *mockNotificationRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

// compile-time interface checks
var (
	_ repository.LeaveRepository        = (*mockLeaveRepo)(nil)
	_ repository.EmployeeRepository     = (*mockEmployeeRepo)(nil)
	_ repository.NotificationRepository = (*mockNotificationRepo)(nil)
)
