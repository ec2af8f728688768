// Package attendance は勤怠管理のドメインロジックを提供する。
package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/teamify/internal/model"
	"github.com/hitoshi/teamify/internal/repository"
)

// MarkInput は勤怠打刻の入力を表す。
type MarkInput struct {
	EmployeeID   string
	Date         time.Time
	CheckInTime  *time.Time
	CheckOutTime *time.Time
	Status       model.AttendanceStatus
	Location     string
	Notes        string
}

// DaySummary は指定日の勤怠サマリーを表す。
type DaySummary struct {
	Date    time.Time                      `json:"date"`
	Total   int                            `json:"total"`
	Counts  map[model.AttendanceStatus]int `json:"counts"`
	Records []*model.Attendance            `json:"records"`
}

// MonthlyStats は従業員1人の月次勤怠統計を表す。
type MonthlyStats struct {
	EmployeeID     string  `json:"employeeId"`
	Year           int     `json:"year"`
	Month          int     `json:"month"`
	WorkingDays    int     `json:"workingDays"`
	PresentDays    int     `json:"presentDays"`
	AbsentDays     int     `json:"absentDays"`
	LateDays       int     `json:"lateDays"`
	TotalHours     float64 `json:"totalHours"`
	AttendanceRate string  `json:"attendanceRate"`
}

// Service は勤怠管理のサービス層。
type Service struct {
	attendanceRepo repository.AttendanceRepository
	employeeRepo   repository.EmployeeRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(attendanceRepo repository.AttendanceRepository, employeeRepo repository.EmployeeRepository) *Service {
	return &Service{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
	}
}

// Mark は勤怠を打刻する。従業員×日付で1行のUPSERTとなり、
// 同日二度目の打刻は既存行に退勤時刻等を追記する。
func (s *Service) Mark(ctx context.Context, input MarkInput) (*model.Attendance, error) {
	if input.EmployeeID == "" {
		return nil, model.NewValidationError("従業員IDは必須です")
	}
	if input.Status == "" {
		input.Status = model.AttendancePresent
	}
	if !input.Status.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("不正な勤怠区分です: %s", input.Status))
	}

	emp, err := s.employeeRepo.FindByID(ctx, input.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("従業員の取得に失敗しました: %w", err)
	}
	if emp == nil {
		return nil, model.NewNotFoundError("従業員", input.EmployeeID)
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}
	date = truncateToDay(date)

	att := &model.Attendance{
		AttendanceID: uuid.New().String(),
		EmployeeID:   input.EmployeeID,
		Date:         date,
		CheckInTime:  input.CheckInTime,
		CheckOutTime: input.CheckOutTime,
		Status:       input.Status,
		WorkHours:    computeWorkHours(input.CheckInTime, input.CheckOutTime),
		Location:     input.Location,
		Notes:        input.Notes,
	}

	saved, err := s.attendanceRepo.Upsert(ctx, att)
	if err != nil {
		return nil, fmt.Errorf("勤怠の保存に失敗しました: %w", err)
	}

	// UPSERTで既存行の打刻が揃った場合は労働時間を再計算する
	if saved.WorkHours == nil {
		if hours := computeWorkHours(saved.CheckInTime, saved.CheckOutTime); hours != nil {
			saved.WorkHours = hours
			if err := s.attendanceRepo.Update(ctx, saved); err != nil {
				return nil, fmt.Errorf("労働時間の更新に失敗しました: %w", err)
			}
		}
	}
	return saved, nil
}

// Update は勤怠記録を修正する。
func (s *Service) Update(ctx context.Context, attendanceID string, input MarkInput) (*model.Attendance, error) {
	att, err := s.attendanceRepo.FindByID(ctx, attendanceID)
	if err != nil {
		return nil, fmt.Errorf("勤怠の取得に失敗しました: %w", err)
	}
	if att == nil {
		return nil, model.NewNotFoundError("勤怠記録", attendanceID)
	}

	if input.Status != "" {
		if !input.Status.IsValid() {
			return nil, model.NewValidationError(fmt.Sprintf("不正な勤怠区分です: %s", input.Status))
		}
		att.Status = input.Status
	}
	if input.CheckInTime != nil {
		att.CheckInTime = input.CheckInTime
	}
	if input.CheckOutTime != nil {
		att.CheckOutTime = input.CheckOutTime
	}
	if input.Location != "" {
		att.Location = input.Location
	}
	if input.Notes != "" {
		att.Notes = input.Notes
	}
	att.WorkHours = computeWorkHours(att.CheckInTime, att.CheckOutTime)

	if err := s.attendanceRepo.Update(ctx, att); err != nil {
		return nil, fmt.Errorf("勤怠の更新に失敗しました: %w", err)
	}
	return att, nil
}

// ListByDate は指定日の全従業員の勤怠を返す。
func (s *Service) ListByDate(ctx context.Context, date time.Time) ([]*model.Attendance, error) {
	records, err := s.attendanceRepo.ListByDate(ctx, truncateToDay(date))
	if err != nil {
		return nil, fmt.Errorf("勤怠一覧の取得に失敗しました: %w", err)
	}
	return records, nil
}

// ListByEmployee は従業員の期間内勤怠を返す。
func (s *Service) ListByEmployee(ctx context.Context, employeeID string, start, end time.Time) ([]*model.Attendance, error) {
	if end.Before(start) {
		return nil, model.NewValidationError("終了日は開始日以降を指定してください")
	}
	records, err := s.attendanceRepo.ListByEmployeeRange(ctx, employeeID, truncateToDay(start), truncateToDay(end))
	if err != nil {
		return nil, fmt.Errorf("勤怠一覧の取得に失敗しました: %w", err)
	}
	return records, nil
}

// TodaySummary は本日の全社勤怠サマリーを返す。
func (s *Service) TodaySummary(ctx context.Context, now time.Time) (*DaySummary, error) {
	date := truncateToDay(now)
	records, err := s.attendanceRepo.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("本日の勤怠取得に失敗しました: %w", err)
	}

	counts := make(map[model.AttendanceStatus]int)
	for _, r := range records {
		counts[r.Status]++
	}
	return &DaySummary{
		Date:    date,
		Total:   len(records),
		Counts:  counts,
		Records: records,
	}, nil
}

// MonthlyEmployeeStats は従業員の月次勤怠統計を返す。
// 出勤率の分母は会社休日を除いた平日数で、0の場合は "0.0%" となる。
func (s *Service) MonthlyEmployeeStats(ctx context.Context, employeeID string, year int, month time.Month) (*MonthlyStats, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	records, err := s.attendanceRepo.ListByEmployeeRange(ctx, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("月次勤怠の取得に失敗しました: %w", err)
	}
	holidays, err := s.attendanceRepo.ListHolidaysBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("会社休日の取得に失敗しました: %w", err)
	}

	holidaySet := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		holidaySet[truncateToDay(h.HolidayDate).Format("2006-01-02")] = true
	}

	workingDays := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if holidaySet[d.Format("2006-01-02")] {
			continue
		}
		workingDays++
	}

	stats := &MonthlyStats{
		EmployeeID: employeeID,
		Year:       year,
		Month:      int(month),
	}
	stats.WorkingDays = workingDays
	hours := make([]*float64, 0, len(records))
	for _, r := range records {
		hours = append(hours, r.WorkHours)
		switch r.Status {
		case model.AttendancePresent, model.AttendanceHalfDay:
			stats.PresentDays++
		case model.AttendanceLate:
			stats.PresentDays++
			stats.LateDays++
		case model.AttendanceAbsent:
			stats.AbsentDays++
		}
	}
	for _, h := range hours {
		if h != nil {
			stats.TotalHours += *h
		}
	}
	if workingDays > 0 {
		stats.AttendanceRate = fmt.Sprintf("%.1f%%", float64(stats.PresentDays)/float64(workingDays)*100)
	} else {
		stats.AttendanceRate = "0.0%"
	}
	return stats, nil
}

// ListHolidays は期間内の会社休日を返す。
func (s *Service) ListHolidays(ctx context.Context, start, end time.Time) ([]*model.Holiday, error) {
	holidays, err := s.attendanceRepo.ListHolidaysBetween(ctx, truncateToDay(start), truncateToDay(end))
	if err != nil {
		return nil, fmt.Errorf("会社休日の取得に失敗しました: %w", err)
	}
	return holidays, nil
}

// computeWorkHours は出退勤の両方が揃っている場合に労働時間を計算する。
func computeWorkHours(checkIn, checkOut *time.Time) *float64 {
	if checkIn == nil || checkOut == nil {
		return nil
	}
	if checkOut.Before(*checkIn) {
		return nil
	}
	hours := checkOut.Sub(*checkIn).Hours()
	return &hours
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
