package dashboard

import (
	"context"
	"time"

	"github.com/hitoshi/teamify/internal/model"
	"github.com/hitoshi/teamify/internal/repository"
)

// mockEmployeeRepo はEmployeeRepositoryのモック。
type mockEmployeeRepo struct {
	countAllFn      func(ctx context.Context) (int, error)
	countByStatusFn func(ctx context.Context) (map[model.EmploymentStatus]int, error)
}

func (m *mockEmployeeRepo) FindByID(ctx context.Context, employeeID string) (*model.Employee, error) {
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
	if m.countByStatusFn != nil {
		return m.countByStatusFn(ctx)
	}
	return map[model.EmploymentStatus]int{}, nil
}

func (m *mockEmployeeRepo) CountAll(ctx context.Context) (int, error) {
	if m.countAllFn != nil {
		return m.countAllFn(ctx)
	}
	return 0, nil
}

// mockOrgRepo はOrgRepositoryのモック。
type mockOrgRepo struct {
	listDepartmentsFn             func(ctx context.Context) ([]*model.Department, error)
	countEmployeesPerDepartmentFn func(ctx context.Context) (map[string]int, error)
}

func (m *mockOrgRepo) ListDepartments(ctx context.Context) ([]*model.Department, error) {
	if m.listDepartmentsFn != nil {
		return m.listDepartmentsFn(ctx)
	}
	return nil, nil
}

func (m *mockOrgRepo) FindDepartmentByID(ctx context.Context, departmentID string) (*model.Department, error) {
	return nil, nil
}
func (m *mockOrgRepo) ListPositions(ctx context.Context) ([]*model.Position, error) {
	return nil, nil
}
func (m *mockOrgRepo) FindPositionByID(ctx context.Context, positionID string) (*model.Position, error) {
	return nil, nil
}
func (m *mockOrgRepo) ListPositionsByDepartment(ctx context.Context, departmentID string) ([]*model.Position, error) {
	return nil, nil
}

func (m *mockOrgRepo) CountEmployeesPerDepartment(ctx context.Context) (map[string]int, error) {
	if m.countEmployeesPerDepartmentFn != nil {
		return m.countEmployeesPerDepartmentFn(ctx)
	}
	return map[string]int{}, nil
}

// mockAttendanceRepo はAttendanceRepositoryのモック。
type mockAttendanceRepo struct {
	listByEmployeeRangeFn func(ctx context.Context, employeeID string, start, end time.Time) ([]*model.Attendance, error)
	countByStatusOnDateFn func(ctx context.Context, date time.Time) (map[model.AttendanceStatus]int, error)
}

func (m *mockAttendanceRepo) Upsert(ctx context.Context, att *model.Attendance) (*model.Attendance, error) {
	return nil, nil
}
func (m *mockAttendanceRepo) FindByID(ctx context.Context, attendanceID string) (*model.Attendance, error) {
	return nil, nil
}
func (m *mockAttendanceRepo) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*model.Attendance, error) {
	return nil, nil
}
func (m *mockAttendanceRepo) Update(ctx context.Context, att *model.Attendance) error { return nil }
func (m *mockAttendanceRepo) ListByDate(ctx context.Context, date time.Time) ([]*model.Attendance, error) {
	return nil, nil
}

func (m *mockAttendanceRepo) ListByEmployeeRange(ctx context.Context, employeeID string, start, end time.Time) ([]*model.Attendance, error) {
	if m.listByEmployeeRangeFn != nil {
		return m.listByEmployeeRangeFn(ctx, employeeID, start, end)
	}
	return nil, nil
}

func (m *mockAttendanceRepo) CountByStatusOnDate(ctx context.Context, date time.Time) (map[model.AttendanceStatus]int, error) {
	if m.countByStatusOnDateFn != nil {
		return m.countByStatusOnDateFn(ctx, date)
	}
	return map[model.AttendanceStatus]int{}, nil
}

func (m *mockAttendanceRepo) ListHolidaysBetween(ctx context.Context, start, end time.Time) ([]*model.Holiday, error) {
	return nil, nil
}

// mockLeaveRepo はLeaveRepositoryのモック。
type mockLeaveRepo struct {
	listBalancesFn          func(ctx context.Context, employeeID string, year int) ([]*model.LeaveBalance, error)
	countRequestsByStatusFn func(ctx context.Context, status model.LeaveStatus) (int, error)
}

func (m *mockLeaveRepo) ListTypes(ctx context.Context) ([]*model.LeaveType, error) { return nil, nil }
func (m *mockLeaveRepo) FindTypeByID(ctx context.Context, leaveTypeID string) (*model.LeaveType, error) {
	return nil, nil
}

func (m *mockLeaveRepo) ListBalances(ctx context.Context, employeeID string, year int) ([]*model.LeaveBalance, error) {
	if m.listBalancesFn != nil {
		return m.listBalancesFn(ctx, employeeID, year)
	}
	return nil, nil
}

func (m *mockLeaveRepo) FindBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (*model.LeaveBalance, error) {
	return nil, nil
}
func (m *mockLeaveRepo) UpsertBalance(ctx context.Context, balance *model.LeaveBalance) error {
	return nil
}
func (m *mockLeaveRepo) AddUsedDays(ctx context.Context, employeeID, leaveTypeID string, year int, days float64) error {
	return nil
}
func (m *mockLeaveRepo) CreateRequest(ctx context.Context, req *model.LeaveRequest) error {
	return nil
}
func (m *mockLeaveRepo) FindRequestByID(ctx context.Context, requestID string) (*model.LeaveRequest, error) {
	return nil, nil
}
func (m *mockLeaveRepo) ListRequests(ctx context.Context) ([]*model.LeaveRequest, error) {
	return nil, nil
}
func (m *mockLeaveRepo) ListRequestsByStatus(ctx context.Context, status model.LeaveStatus) ([]*model.LeaveRequest, error) {
	return nil, nil
}
func (m *mockLeaveRepo) ListRequestsByEmployee(ctx context.Context, employeeID string) ([]*model.LeaveRequest, error) {
	return nil, nil
}

func (m *mockLeaveRepo) CountRequestsByStatus(ctx context.Context, status model.LeaveStatus) (int, error) {
	if m.countRequestsByStatusFn != nil {
		return m.countRequestsByStatusFn(ctx, status)
	}
	return 0, nil
}

func (m *mockLeaveRepo) ReviewRequest(ctx context.Context, requestID string, status model.LeaveStatus, reviewerID, comments string, reviewedAt time.Time) (bool, error) {
	return false, nil
}

// mockPerformanceRepo はPerformanceRepositoryのモック。
type mockPerformanceRepo struct {
	listReviewsByEmployeeFn func(ctx context.Context, employeeID string) ([]*model.PerformanceReview, error)
	listCompletedReviewsFn  func(ctx context.Context) ([]*model.PerformanceReview, error)
	listGoalsByEmployeeFn   func(ctx context.Context, employeeID string) ([]*model.PerformanceGoal, error)
}

func (m *mockPerformanceRepo) CreateReview(ctx context.Context, review *model.PerformanceReview) error {
	return nil
}
func (m *mockPerformanceRepo) FindReviewByID(ctx context.Context, reviewID string) (*model.PerformanceReview, error) {
	return nil, nil
}
func (m *mockPerformanceRepo) UpdateReview(ctx context.Context, review *model.PerformanceReview) error {
	return nil
}
func (m *mockPerformanceRepo) DeleteReview(ctx context.Context, reviewID string) error { return nil }
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
	if m.listCompletedReviewsFn != nil {
		return m.listCompletedReviewsFn(ctx)
	}
	return nil, nil
}

func (m *mockPerformanceRepo) CreateGoal(ctx context.Context, goal *model.PerformanceGoal) error {
	return nil
}
func (m *mockPerformanceRepo) UpdateGoal(ctx context.Context, goal *model.PerformanceGoal) error {
	return nil
}
func (m *mockPerformanceRepo) FindGoalByID(ctx context.Context, goalID string) (*model.PerformanceGoal, error) {
	return nil, nil
}

func (m *mockPerformanceRepo) ListGoalsByEmployee(ctx context.Context, employeeID string) ([]*model.PerformanceGoal, error) {
	if m.listGoalsByEmployeeFn != nil {
		return m.listGoalsByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

// mockRecruitmentRepo はRecruitmentRepositoryのモック。
type mockRecruitmentRepo struct {
	countPostingsByStatusFn func(ctx context.Context, status model.PostingStatus) (int, error)
	listApplicationsFn      func(ctx context.Context) ([]*model.Application, error)
}

func (m *mockRecruitmentRepo) CreatePosting(ctx context.Context, posting *model.JobPosting) error {
	return nil
}
func (m *mockRecruitmentRepo) FindPostingByID(ctx context.Context, postingID string) (*model.JobPosting, error) {
	return nil, nil
}
func (m *mockRecruitmentRepo) UpdatePosting(ctx context.Context, posting *model.JobPosting) error {
	return nil
}
func (m *mockRecruitmentRepo) DeletePosting(ctx context.Context, postingID string) error {
	return nil
}
func (m *mockRecruitmentRepo) ListPostings(ctx context.Context) ([]*model.JobPosting, error) {
	return nil, nil
}
func (m *mockRecruitmentRepo) ListPostingsByStatus(ctx context.Context, status model.PostingStatus) ([]*model.JobPosting, error) {
	return nil, nil
}

func (m *mockRecruitmentRepo) CountPostingsByStatus(ctx context.Context, status model.PostingStatus) (int, error) {
	if m.countPostingsByStatusFn != nil {
		return m.countPostingsByStatusFn(ctx, status)
	}
	return 0, nil
}

func (m *mockRecruitmentRepo) CreateApplicant(ctx context.Context, applicant *model.Applicant) error {
	return nil
}
func (m *mockRecruitmentRepo) FindApplicantByID(ctx context.Context, applicantID string) (*model.Applicant, error) {
	return nil, nil
}
func (m *mockRecruitmentRepo) CreateApplication(ctx context.Context, app *model.Application) error {
	return nil
}
func (m *mockRecruitmentRepo) FindApplicationByID(ctx context.Context, applicationID string) (*model.Application, error) {
	return nil, nil
}

func (m *mockRecruitmentRepo) ListApplications(ctx context.Context) ([]*model.Application, error) {
	if m.listApplicationsFn != nil {
		return m.listApplicationsFn(ctx)
	}
	return nil, nil
}

func (m *mockRecruitmentRepo) ListApplicationsByPosting(ctx context.Context, postingID string) ([]*model.Application, error) {
	return nil, nil
}
func (m *mockRecruitmentRepo) ListApplicationsByStatus(ctx context.Context, status model.ApplicationStatus) ([]*model.Application, error) {
	return nil, nil
}
func (m *mockRecruitmentRepo) UpdateApplicationStatus(ctx context.Context, applicationID string, status model.ApplicationStatus, stage string, reviewerID *string) error {
	return nil
}
func (m *mockRecruitmentRepo) CreateInterview(ctx context.Context, interview *model.Interview) error {
	return nil
}
func (m *mockRecruitmentRepo) ListInterviewsByApplication(ctx context.Context, applicationID string) ([]*model.Interview, error) {
	return nil, nil
}
func (m *mockRecruitmentRepo) UpdateInterviewFeedback(ctx context.Context, interviewID, feedback string, rating *float64) error {
	return nil
}

// mockPayrollRepo はPayrollRepositoryのモック。
type mockPayrollRepo struct {
	listByPeriodFn func(ctx context.Context, start, end time.Time) ([]*model.Payroll, error)
}

func (m *mockPayrollRepo) Create(ctx context.Context, p *model.Payroll) error { return nil }
func (m *mockPayrollRepo) FindByID(ctx context.Context, payrollID string) (*model.Payroll, error) {
	return nil, nil
}
func (m *mockPayrollRepo) UpdateAmounts(ctx context.Context, p *model.Payroll) (bool, error) {
	return false, nil
}
func (m *mockPayrollRepo) MarkProcessed(ctx context.Context, payrollID string, method model.PaymentMethod, txRef string) (bool, error) {
	return false, nil
}
func (m *mockPayrollRepo) MarkPaid(ctx context.Context, payrollID string, paymentDate time.Time) (bool, error) {
	return false, nil
}
func (m *mockPayrollRepo) List(ctx context.Context) ([]*model.Payroll, error) { return nil, nil }
func (m *mockPayrollRepo) ListByEmployee(ctx context.Context, employeeID string) ([]*model.Payroll, error) {
	return nil, nil
}

func (m *mockPayrollRepo) ListByPeriod(ctx context.Context, start, end time.Time) ([]*model.Payroll, error) {
	if m.listByPeriodFn != nil {
		return m.listByPeriodFn(ctx, start, end)
	}
	return nil, nil
}

func (m *mockPayrollRepo) ListEmployeesWithoutPayroll(ctx context.Context, periodStart, periodEnd time.Time) ([]*model.Employee, error) {
	return nil, nil
}

// compile-time interface checks
var (
	_ repository.EmployeeRepository    = (*mockEmployeeRepo)(nil)
	_ repository.OrgRepository         = (*mockOrgRepo)(nil)
	_ repository.AttendanceRepository  = (*mockAttendanceRepo)(nil)
	_ repository.LeaveRepository       = (*mockLeaveRepo)(nil)
	_ repository.PerformanceRepository = (*mockPerformanceRepo)(nil)
	_ repository.RecruitmentRepository = (*mockRecruitmentRepo)(nil)
	_ repository.PayrollRepository     = (*mockPayrollRepo)(nil)
)
