// Package leave は休暇管理のドメインロジックを提供する。
package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/teamify/internal/model"
	"github.com/hitoshi/teamify/internal/repository"
)

// RequestInput は休暇申請の入力を表す。
type RequestInput struct {
	EmployeeID  string
	LeaveTypeID string
	StartDate   time.Time
	EndDate     time.Time
	Reason      string
}

// ReviewInput は休暇申請の承認・却下の入力を表す。
type ReviewInput struct {
	ReviewerID string
	Approve    bool
	Comments   string
}

// Service は休暇管理のサービス層。
// 承認・却下時には申請者のユーザーへ通知を作成する。
type Service struct {
	leaveRepo        repository.LeaveRepository
	employeeRepo     repository.EmployeeRepository
	notificationRepo repository.NotificationRepository
	logger           *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	leaveRepo repository.LeaveRepository,
	employeeRepo repository.EmployeeRepository,
	notificationRepo repository.NotificationRepository,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		leaveRepo:        leaveRepo,
		employeeRepo:     employeeRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// ListTypes は休暇種別一覧を返す。
func (s *Service) ListTypes(ctx context.Context) ([]*model.LeaveType, error) {
	types, err := s.leaveRepo.ListTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("休暇種別の取得に失敗しました: %w", err)
	}
	return types, nil
}

// Balances は従業員×年度の残日数一覧を返す。
// 残日数行が未作成の休暇種別があればデフォルト日数で初期化する。
func (s *Service) Balances(ctx context.Context, employeeID string, year int) ([]*model.LeaveBalance, error) {
	types, err := s.leaveRepo.ListTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("休暇種別の取得に失敗しました: %w", err)
	}

	existing, err := s.leaveRepo.ListBalances(ctx, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("残日数の取得に失敗しました: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, b := range existing {
		have[b.LeaveTypeID] = true
	}

	initialized := false
	for _, lt := range types {
		if have[lt.LeaveTypeID] {
			continue
		}
		balance := &model.LeaveBalance{
			LeaveBalanceID: uuid.New().String(),
			EmployeeID:     employeeID,
			LeaveTypeID:    lt.LeaveTypeID,
			Year:           year,
			TotalDays:      lt.DefaultDaysPerYear,
			UsedDays:       0,
		}
		// 冪等UPSERT。並行初期化で既存行があっても変更しない。
		if err := s.leaveRepo.UpsertBalance(ctx, balance); err != nil {
			return nil, fmt.Errorf("残日数の初期化に失敗しました: %w", err)
		}
		initialized = true
	}

	if !initialized {
		return existing, nil
	}
	balances, err := s.leaveRepo.ListBalances(ctx, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("残日数の再取得に失敗しました: %w", err)
	}
	return balances, nil
}

// CreateRequest は休暇申請を作成する。
// 日数は開始日・終了日を両端に含む暦日で計算し、残日数が不足していればエラーを返す。
func (s *Service) CreateRequest(ctx context.Context, input RequestInput) (*model.LeaveRequest, error) {
	if input.EmployeeID == "" || input.LeaveTypeID == "" {
		return nil, model.NewValidationError("従業員IDと休暇種別は必須です")
	}
	start := truncateToDay(input.StartDate)
	end := truncateToDay(input.EndDate)
	if end.Before(start) {
		return nil, model.NewValidationError("終了日は開始日以降を指定してください")
	}

	leaveType, err := s.leaveRepo.FindTypeByID(ctx, input.LeaveTypeID)
	if err != nil {
		return nil, fmt.Errorf("休暇種別の取得に失敗しました: %w", err)
	}
	if leaveType == nil {
		return nil, model.NewNotFoundError("休暇種別", input.LeaveTypeID)
	}

	// 両端を含む日数
	days := end.Sub(start).Hours()/24 + 1

	balance, err := s.leaveRepo.FindBalance(ctx, input.EmployeeID, input.LeaveTypeID, start.Year())
	if err != nil {
		return nil, fmt.Errorf("残日数の取得に失敗しました: %w", err)
	}
	remaining := leaveType.DefaultDaysPerYear
	if balance != nil {
		remaining = balance.RemainingDays()
	}
	if days > remaining {
		return nil, model.NewInsufficientLeaveError(remaining, days)
	}

	req := &model.LeaveRequest{
		LeaveRequestID: uuid.New().String(),
		EmployeeID:     input.EmployeeID,
		LeaveTypeID:    input.LeaveTypeID,
		StartDate:      start,
		EndDate:        end,
		TotalDays:      days,
		Reason:         input.Reason,
		Status:         model.LeavePending,
		AppliedDate:    time.Now(),
	}
	if err := s.leaveRepo.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("休暇申請の作成に失敗しました: %w", err)
	}
	return req, nil
}

// GetRequest は指定IDの休暇申請を返す。
func (s *Service) GetRequest(ctx context.Context, requestID string) (*model.LeaveRequest, error) {
	req, err := s.leaveRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("休暇申請の取得に失敗しました: %w", err)
	}
	if req == nil {
		return nil, model.NewNotFoundError("休暇申請", requestID)
	}
	return req, nil
}

// ListRequests は休暇申請一覧を返す。statusが空でない場合は状態で絞り込む。
func (s *Service) ListRequests(ctx context.Context, status model.LeaveStatus) ([]*model.LeaveRequest, error) {
	var (
		reqs []*model.LeaveRequest
		err  error
	)
	if status != "" {
		reqs, err = s.leaveRepo.ListRequestsByStatus(ctx, status)
	} else {
		reqs, err = s.leaveRepo.ListRequests(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("休暇申請一覧の取得に失敗しました: %w", err)
	}
	return reqs, nil
}

// ListRequestsByEmployee は従業員の休暇申請一覧を返す。
func (s *Service) ListRequestsByEmployee(ctx context.Context, employeeID string) ([]*model.LeaveRequest, error) {
	reqs, err := s.leaveRepo.ListRequestsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("休暇申請一覧の取得に失敗しました: %w", err)
	}
	return reqs, nil
}

// Review は休暇申請を承認または却下する。
// PENDING状態の申請のみ処理でき、承認時は使用日数を加算する。
// 通知の作成失敗は処理を失敗させず、警告ログのみ残す。
func (s *Service) Review(ctx context.Context, requestID string, input ReviewInput) (*model.LeaveRequest, error) {
	if input.ReviewerID == "" {
		return nil, model.NewValidationError("レビュアーIDは必須です")
	}

	req, err := s.leaveRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("休暇申請の取得に失敗しました: %w", err)
	}
	if req == nil {
		return nil, model.NewNotFoundError("休暇申請", requestID)
	}

	status := model.LeaveRejected
	if input.Approve {
		status = model.LeaveApproved
	}

	now := time.Now()
	updated, err := s.leaveRepo.ReviewRequest(ctx, requestID, status, input.ReviewerID, input.Comments, now)
	if err != nil {
		return nil, fmt.Errorf("休暇申請の更新に失敗しました: %w", err)
	}
	if !updated {
		// 並行レビューや処理済み申請
		return nil, model.NewInvalidTransitionError(string(req.Status), string(status))
	}

	if status == model.LeaveApproved {
		if err := s.leaveRepo.AddUsedDays(ctx, req.EmployeeID, req.LeaveTypeID, req.StartDate.Year(), req.TotalDays); err != nil {
			return nil, fmt.Errorf("使用日数の加算に失敗しました: %w", err)
		}
	}

	s.notifyDecision(ctx, req, status, input.Comments)

	req.Status = status
	req.ReviewedBy = &input.ReviewerID
	req.ReviewedDate = &now
	req.ReviewerComments = input.Comments
	return req, nil
}

// notifyDecision は申請者のユーザーへ承認・却下の通知を作成する。
func (s *Service) notifyDecision(ctx context.Context, req *model.LeaveRequest, status model.LeaveStatus, comments string) {
	emp, err := s.employeeRepo.FindByID(ctx, req.EmployeeID)
	if err != nil || emp == nil || emp.UserID == nil {
		// ユーザー未紐付けの従業員には通知先がない
		if err != nil {
			s.logger.Warn("通知先従業員の取得に失敗", "employee_id", req.EmployeeID, "error", err)
		}
		return
	}

	title := "休暇申請が却下されました"
	if status == model.LeaveApproved {
		title = "休暇申請が承認されました"
	}
	message := fmt.Sprintf("%s〜%sの休暇申請（%.1f日）", req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"), req.TotalDays)
	if comments != "" {
		message += "：" + comments
	}

	n := &model.Notification{
		ID:      uuid.New().String(),
		UserID:  *emp.UserID,
		Title:   title,
		Message: message,
		Type:    model.NotificationTypeLeaveRequest,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logger.Warn("休暇決定通知の作成に失敗", "request_id", req.LeaveRequestID, "error", err)
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
