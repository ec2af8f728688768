package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hitoshi/teamify/internal/model"
	"github.com/hitoshi/teamify/internal/repository"
)

// HRStats は管理ダッシュボードの統計を表す。
type HRStats struct {
	TotalEmployees  int    `json:"totalEmployees"`
	PresentToday    int    `json:"presentToday"`
	PendingLeaves   int    `json:"pendingLeaves"`
	OpenPositions   int    `json:"openPositions"`
	AttendanceRate  string `json:"attendanceRate"`
	ActiveEmployees int    `json:"activeEmployees"`
}

// DepartmentHeadcount は部署ごとの人数を表す。
type DepartmentHeadcount struct {
	DepartmentID   string `json:"departmentId"`
	DepartmentName string `json:"departmentName"`
	Headcount      int    `json:"headcount"`
}

// EmployeeStats はセルフサービスポータルの個人統計を表す。
type EmployeeStats struct {
	HoursThisWeek      float64 `json:"hoursThisWeek"`
	LeaveBalance       float64 `json:"leaveBalance"`
	LatestReviewScore  float64 `json:"latestReviewScore"`
	GoalsCompleted     int     `json:"goalsCompleted"`
	GoalsTotal         int     `json:"goalsTotal"`
	GoalCompletionRate string  `json:"goalCompletionRate"`
}

// PayrollStats は支給期間の給与統計を表す。
type PayrollStats struct {
	TotalGross     float64 `json:"totalGross"`
	TotalNet       float64 `json:"totalNet"`
	TotalDeduction float64 `json:"totalDeductions"`
	DraftCount     int     `json:"draftCount"`
	ProcessedCount int     `json:"processedCount"`
	PaidCount      int     `json:"paidCount"`
}

// RecruitmentStats は採用パイプラインの統計を表す。
type RecruitmentStats struct {
	ActivePostings    int    `json:"activePostings"`
	TotalApplications int    `json:"totalApplications"`
	InReview          int    `json:"inReview"`
	Interviewed       int    `json:"interviewed"`
	Hired             int    `json:"hired"`
	HireRate          string `json:"hireRate"`
}

// TopPerformer は平均評点上位の従業員を表す。
type TopPerformer struct {
	EmployeeID    string  `json:"employeeId"`
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}

// Service はダッシュボード統計のビジネスロジックを提供する。
type Service struct {
	employeeRepo    repository.EmployeeRepository
	orgRepo         repository.OrgRepository
	attendanceRepo  repository.AttendanceRepository
	leaveRepo       repository.LeaveRepository
	performanceRepo repository.PerformanceRepository
	recruitmentRepo repository.RecruitmentRepository
	payrollRepo     repository.PayrollRepository
}

// NewService はServiceを生成する。
func NewService(
	employeeRepo repository.EmployeeRepository,
	orgRepo repository.OrgRepository,
	attendanceRepo repository.AttendanceRepository,
	leaveRepo repository.LeaveRepository,
	performanceRepo repository.PerformanceRepository,
	recruitmentRepo repository.RecruitmentRepository,
	payrollRepo repository.PayrollRepository,
) *Service {
	return &Service{
		employeeRepo:    employeeRepo,
		orgRepo:         orgRepo,
		attendanceRepo:  attendanceRepo,
		leaveRepo:       leaveRepo,
		performanceRepo: performanceRepo,
		recruitmentRepo: recruitmentRepo,
		payrollRepo:     payrollRepo,
	}
}

// HRStats は管理ダッシュボードの統計を集計する。
// 出勤率の分母は総従業員数で、0の場合は "0.0%" となる。
func (s *Service) HRStats(ctx context.Context, today time.Time) (*HRStats, error) {
	total, err := s.employeeRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("従業員総数の集計に失敗しました: %w", err)
	}

	statusCounts, err := s.employeeRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("雇用状態別集計に失敗しました: %w", err)
	}

	attendanceCounts, err := s.attendanceRepo.CountByStatusOnDate(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("本日の勤怠集計に失敗しました: %w", err)
	}
	// 遅刻も出勤として数える
	present := attendanceCounts[model.AttendancePresent] + attendanceCounts[model.AttendanceLate]

	pendingLeaves, err := s.leaveRepo.CountRequestsByStatus(ctx, model.LeavePending)
	if err != nil {
		return nil, fmt.Errorf("承認待ち休暇の集計に失敗しました: %w", err)
	}

	openPositions, err := s.recruitmentRepo.CountPostingsByStatus(ctx, model.PostingActive)
	if err != nil {
		return nil, fmt.Errorf("公開中求人の集計に失敗しました: %w", err)
	}

	return &HRStats{
		TotalEmployees:  total,
		PresentToday:    present,
		PendingLeaves:   pendingLeaves,
		OpenPositions:   openPositions,
		AttendanceRate:  PercentString(SafeRatio(float64(present), float64(total))),
		ActiveEmployees: statusCounts[model.EmploymentActive],
	}, nil
}

// DepartmentOverview は部署ごとの人数一覧を返す。
func (s *Service) DepartmentOverview(ctx context.Context) ([]*DepartmentHeadcount, error) {
	departments, err := s.orgRepo.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("部署一覧の取得に失敗しました: %w", err)
	}
	counts, err := s.orgRepo.CountEmployeesPerDepartment(ctx)
	if err != nil {
		return nil, fmt.Errorf("部署別人数の集計に失敗しました: %w", err)
	}

	overview := make([]*DepartmentHeadcount, 0, len(departments))
	for _, dept := range departments {
		overview = append(overview, &DepartmentHeadcount{
			DepartmentID:   dept.DepartmentID,
			DepartmentName: dept.DepartmentName,
			Headcount:      counts[dept.DepartmentID],
		})
	}
	return overview, nil
}

// EmployeeStats は従業員個人の統計を集計する。
// 勤務時間の合計では未打刻（nil）を0として扱い、
// 最新評価の評点は未入力の評価をさかのぼって除外する。
func (s *Service) EmployeeStats(ctx context.Context, employeeID string, now time.Time) (*EmployeeStats, error) {
	weekStart := startOfWeek(now)
	records, err := s.attendanceRepo.ListByEmployeeRange(ctx, employeeID, weekStart, now)
	if err != nil {
		return nil, fmt.Errorf("今週の勤怠取得に失敗しました: %w", err)
	}
	hours := make([]*float64, 0, len(records))
	for _, r := range records {
		hours = append(hours, r.WorkHours)
	}

	balances, err := s.leaveRepo.ListBalances(ctx, employeeID, now.Year())
	if err != nil {
		return nil, fmt.Errorf("残日数の取得に失敗しました: %w", err)
	}
	var leaveBalance float64
	for _, b := range balances {
		leaveBalance += b.RemainingDays()
	}

	reviews, err := s.performanceRepo.ListReviewsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("評価の取得に失敗しました: %w", err)
	}
	// 評価日降順の先頭から、評点が入力済みの最新評価を探す
	var latestScore float64
	for _, r := range reviews {
		if r.OverallRating != nil {
			latestScore = *r.OverallRating
			break
		}
	}

	goals, err := s.performanceRepo.ListGoalsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("目標の取得に失敗しました: %w", err)
	}
	completed := 0
	for _, g := range goals {
		if g.Status == model.GoalCompleted {
			completed++
		}
	}

	return &EmployeeStats{
		HoursThisWeek:      SumFloat(hours),
		LeaveBalance:       leaveBalance,
		LatestReviewScore:  latestScore,
		GoalsCompleted:     completed,
		GoalsTotal:         len(goals),
		GoalCompletionRate: PercentString(SafeRatio(float64(completed), float64(len(goals)))),
	}, nil
}

// PayrollStats は指定期間の給与統計を集計する。
func (s *Service) PayrollStats(ctx context.Context, start, end time.Time) (*PayrollStats, error) {
	payrolls, err := s.payrollRepo.ListByPeriod(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("期間別給与の取得に失敗しました: %w", err)
	}

	stats := &PayrollStats{}
	for _, p := range payrolls {
		stats.TotalGross += p.GrossSalary
		stats.TotalNet += p.NetSalary
		stats.TotalDeduction += p.Deductions
		switch p.Status {
		case model.PayrollDraft:
			stats.DraftCount++
		case model.PayrollProcessed:
			stats.ProcessedCount++
		case model.PayrollPaid:
			stats.PaidCount++
		}
	}
	return stats, nil
}

// RecruitmentStats は採用パイプラインの統計を集計する。
// 採用率の分母は総応募数で、0の場合は "0.0%" となる。
func (s *Service) RecruitmentStats(ctx context.Context) (*RecruitmentStats, error) {
	activePostings, err := s.recruitmentRepo.CountPostingsByStatus(ctx, model.PostingActive)
	if err != nil {
		return nil, fmt.Errorf("公開中求人の集計に失敗しました: %w", err)
	}

	applications, err := s.recruitmentRepo.ListApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗しました: %w", err)
	}

	stats := &RecruitmentStats{
		ActivePostings:    activePostings,
		TotalApplications: len(applications),
	}
	for _, app := range applications {
		switch app.Status {
		case model.ApplicationUnderReview, model.ApplicationShortlisted:
			stats.InReview++
		case model.ApplicationInterviewed:
			stats.Interviewed++
		case model.ApplicationHired:
			stats.Hired++
		}
	}
	stats.HireRate = PercentString(SafeRatio(float64(stats.Hired), float64(len(applications))))
	return stats, nil
}

// TopPerformers は完了済み評価の平均評点上位n人を返す。
// 評点未入力の評価は個人の分母から除外され、
// 有効な評点が1つもない従業員は対象外となる。
func (s *Service) TopPerformers(ctx context.Context, n int) ([]*TopPerformer, error) {
	reviews, err := s.performanceRepo.ListCompletedReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("完了済み評価の取得に失敗しました: %w", err)
	}

	byEmployee := make(map[string][]*float64)
	for _, r := range reviews {
		byEmployee[r.EmployeeID] = append(byEmployee[r.EmployeeID], r.OverallRating)
	}

	performers := make([]*TopPerformer, 0, len(byEmployee))
	for employeeID, ratings := range byEmployee {
		rated := 0
		for _, r := range ratings {
			if r != nil {
				rated++
			}
		}
		if rated == 0 {
			continue
		}
		performers = append(performers, &TopPerformer{
			EmployeeID:    employeeID,
			AverageRating: AverageExcludingNil(ratings),
			ReviewCount:   rated,
		})
	}

	sort.Slice(performers, func(i, j int) bool {
		if performers[i].AverageRating != performers[j].AverageRating {
			return performers[i].AverageRating > performers[j].AverageRating
		}
		return performers[i].EmployeeID < performers[j].EmployeeID
	})

	if n > 0 && len(performers) > n {
		performers = performers[:n]
	}
	return performers, nil
}

// startOfWeek は月曜始まりの週頭（0時）を返す。
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // 日曜は週の7日目
	}
	day := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}
