package auth

import (
	"context"
	"time"

	"github.com/hitoshi/teamify/internal/model"
	"github.com/hitoshi/teamify/internal/repository"
)

// --- モック定義 ---

type mockCredentialRepo struct {
	findByEmailFn     func(ctx context.Context, email string) (*model.Credential, error)
	findBySubjectIDFn func(ctx context.Context, subjectID string) (*model.Credential, error)
	createFn          func(ctx context.Context, cred *model.Credential) error
}

func (m *mockCredentialRepo) FindByEmail(ctx context.Context, email string) (*model.Credential, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockCredentialRepo) FindBySubjectID(ctx context.Context, subjectID string) (*model.Credential, error) {
	if m.findBySubjectIDFn != nil {
		return m.findBySubjectIDFn(ctx, subjectID)
	}
	return nil, nil
}

func (m *mockCredentialRepo) Create(ctx context.Context, cred *model.Credential) error {
	if m.createFn != nil {
		return m.createFn(ctx, cred)
	}
	return nil
}

type mockSessionRepo struct {
	createFn            func(ctx context.Context, session *model.Session) error
	findByIDFn          func(ctx context.Context, id string) (*model.Session, error)
	extendExpiryFn      func(ctx context.Context, id string, expiresAt time.Time) error
	deleteByIDFn        func(ctx context.Context, id string) error
	deleteBySubjectIDFn func(ctx context.Context, subjectID string) error
	deleteExpiredFn     func(ctx context.Context) (int64, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockSessionRepo) ExtendExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	if m.extendExpiryFn != nil {
		return m.extendExpiryFn(ctx, id, expiresAt)
	}
	return nil
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

func (m *mockSessionRepo) DeleteBySubjectID(ctx context.Context, subjectID string) error {
	if m.deleteBySubjectIDFn != nil {
		return m.deleteBySubjectIDFn(ctx, subjectID)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return 0, nil
}

type mockUserRepo struct {
	findByIDFn        func(ctx context.Context, userID string) (*model.User, error)
	insertFn          func(ctx context.Context, user *model.User) (bool, error)
	updateLastLoginFn func(ctx context.Context, userID string, at time.Time) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, userID string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockUserRepo) Insert(ctx context.Context, user *model.User) (bool, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, user)
	}
	return true, nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	if m.updateLastLoginFn != nil {
		return m.updateLastLoginFn(ctx, userID, at)
	}
	return nil
}

type mockEmployeeRepo struct {
	findByIDFn     func(ctx context.Context, employeeID string) (*model.Employee, error)
	findByUserIDFn func(ctx context.Context, userID string) (*model.Employee, error)
	insertFn       func(ctx context.Context, emp *model.Employee) (bool, error)
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
	if m.insertFn != nil {
		return m.insertFn(ctx, emp)
	}
	return true, nil
}

func (m *mockEmployeeRepo) Create(_ context.Context, _ *model.Employee) error { return nil }
func (m *mockEmployeeRepo) Update(_ context.Context, _ *model.Employee) error { return nil }
func (m *mockEmployeeRepo) UpdateStatus(_ context.Context, _ string, _ model.EmploymentStatus) error {
	return nil
}
func (m *mockEmployeeRepo) List(_ context.Context) ([]*model.Employee, error) { return nil, nil }
func (m *mockEmployeeRepo) Search(_ context.Context, _ string) ([]*model.Employee, error) {
	return nil, nil
}
func (m *mockEmployeeRepo) ListByDepartment(_ context.Context, _ string) ([]*model.Employee, error) {
	return nil, nil
}
func (m *mockEmployeeRepo) CountByStatus(_ context.Context) (map[model.EmploymentStatus]int, error) {
	return nil, nil
}
func (m *mockEmployeeRepo) CountAll(_ context.Context) (int, error) { return 0, nil }

type mockOrgRepo struct {
	findDepartmentByIDFn func(ctx context.Context, departmentID string) (*model.Department, error)
	findPositionByIDFn   func(ctx context.Context, positionID string) (*model.Position, error)
}

func (m *mockOrgRepo) ListDepartments(_ context.Context) ([]*model.Department, error) {
	return nil, nil
}

func (m *mockOrgRepo) FindDepartmentByID(ctx context.Context, departmentID string) (*model.Department, error) {
	if m.findDepartmentByIDFn != nil {
		return m.findDepartmentByIDFn(ctx, departmentID)
	}
	return nil, nil
}

func (m *mockOrgRepo) ListPositions(_ context.Context) ([]*model.Position, error) { return nil, nil }

func (m *mockOrgRepo) FindPositionByID(ctx context.Context, positionID string) (*model.Position, error) {
	if m.findPositionByIDFn != nil {
		return m.findPositionByIDFn(ctx, positionID)
	}
	return nil, nil
}

func (m *mockOrgRepo) ListPositionsByDepartment(_ context.Context, _ string) ([]*model.Position, error) {
	return nil, nil
}

func (m *mockOrgRepo) CountEmployeesPerDepartment(_ context.Context) (map[string]int, error) {
	return nil, nil
}

type mockMetrics struct {
	successCount   int
	failureReasons []string
	failedTables   []string
}

func (m *mockMetrics) RecordSignInSuccess() { m.successCount++ }

func (m *mockMetrics) RecordSignInFailure(reason string) {
	m.failureReasons = append(m.failureReasons, reason)
}

func (m *mockMetrics) RecordProvisioningFailure(table string) {
	m.failedTables = append(m.failedTables, table)
}

// --- compile-time interface checks ---
var _ Metrics = (*mockMetrics)(nil)
var _ repository.CredentialRepository = (*mockCredentialRepo)(nil)
var _ repository.SessionRepository = (*mockSessionRepo)(nil)
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ repository.EmployeeRepository = (*mockEmployeeRepo)(nil)
var _ repository.OrgRepository = (*mockOrgRepo)(nil)
