package performance

import (
	"context"

	"github.com/hitoshi/teamify/internal/model"
	"github.com/hitoshi/teamify/internal/repository"
)

// mockPerformanceRepo はPerformanceRepositoryのモック。
type mockPerformanceRepo struct {
	createReviewFn          func(ctx context.Context, review *model.PerformanceReview) error
	findReviewByIDFn        func(ctx context.Context, reviewID string) (*model.PerformanceReview, error)
	updateReviewFn          func(ctx context.Context, review *model.PerformanceReview) error
	deleteReviewFn          func(ctx context.Context, reviewID string) error
	listReviewsByEmployeeFn func(ctx context.Context, employeeID string) ([]*model.PerformanceReview, error)
	createGoalFn            func(ctx context.Context, goal *model.PerformanceGoal) error
	updateGoalFn            func(ctx context.Context, goal *model.PerformanceGoal) error
	findGoalByIDFn          func(ctx context.Context, goalID string) (*model.PerformanceGoal, error)
}

func (m *mockPerformanceRepo) CreateReview(ctx context.Context, review *model.PerformanceReview) error {
	if m.createReviewFn != nil {
		return m.createReviewFn(ctx, review)
	}
	return nil
}

func (m *mockPerformanceRepo) FindReviewByID(ctx context.Context, reviewID string) (*model.PerformanceReview, error) {
	if m.findReviewByIDFn != nil {
		return m.findReviewByIDFn(ctx, reviewID)
	}
	return nil, nil
}

func (m *mockPerformanceRepo) UpdateReview(ctx context.Context, review *model.PerformanceReview) error {
	if m.updateReviewFn != nil {
		return m.updateReviewFn(ctx, review)
	}
	return nil
}

func (m *mockPerformanceRepo) DeleteReview(ctx context.Context, reviewID string) error {
	if m.deleteReviewFn != nil {
		return m.deleteReviewFn(ctx, reviewID)
	}
	return nil
}

func (m *mockPerformanceRepo) ListReviews(ctx context.Context) ([]*model.PerformanceReview, error) {
	return nil, nil
}

func (m *mockPerformanceRepo) ListReviewsByEmployee(ctx context.Context, employeeID string) ([]*model.PerformanceReview, error) {
	if m.listReviewsByEmployeeFn != nil {
		return m.listReviewsByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (m *mockPerformanceRepo) ListCompletedReviews(ctx context.Context) ([]*model.PerformanceReview, error) {
	return nil, nil
}

func (m *mockPerformanceRepo) CreateGoal(ctx context.Context, goal *model.PerformanceGoal) error {
	if m.createGoalFn != nil {
		return m.createGoalFn(ctx, goal)
	}
	return nil
}

func (m *mockPerformanceRepo) UpdateGoal(ctx context.Context, goal *model.PerformanceGoal) error {
	if m.updateGoalFn != nil {
		return m.updateGoalFn(ctx, goal)
	}
	return nil
}

func (m *mockPerformanceRepo) FindGoalByID(ctx context.Context, goalID string) (*model.PerformanceGoal, error) {
	if m.findGoalByIDFn != nil {
		return m.findGoalByIDFn(ctx, goalID)
	}
	return nil, nil
}

func (m *mockPerformanceRepo) ListGoalsByEmployee(ctx context.Context, employeeID string) ([]*model.PerformanceGoal, error) {
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
	_ repository.PerformanceRepository = (*mockPerformanceRepo)(nil)
	_ repository.EmployeeRepository    = (*mockEmployeeRepo)(nil)
)
