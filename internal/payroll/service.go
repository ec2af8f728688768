// Package payroll は給与管理のドメインロジックを提供する。
package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/teamify/internal/model"
	"github.com/hitoshi/teamify/internal/repository"
)

// CreateInput は給与行作成の入力を表す。
// 総支給額・手取り額はDB側の導出列で計算されるため入力しない。
type CreateInput struct {
	EmployeeID     string
	PayPeriodStart time.Time
	PayPeriodEnd   time.Time
	BasicSalary    float64
	Allowances     float64
	Deductions     float64
	Notes          string
}

// UpdateInput はDRAFT状態の給与行更新の入力を表す。
type UpdateInput struct {
	BasicSalary float64
	Allowances  float64
	Deductions  float64
	Notes       string
}

// RunResult は一括ドラフト生成の結果を表す。
type RunResult struct {
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	Created     int       `json:"created"`
	Skipped     int       `json:"skipped"`
}

// Service は給与管理のサービス層。
// 給与行はDRAFT→PROCESSED→PAIDの一方向にのみ遷移する。
type Service struct {
	payrollRepo  repository.PayrollRepository
	employeeRepo repository.EmployeeRepository
	logger       *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(payrollRepo repository.PayrollRepository, employeeRepo repository.EmployeeRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		logger:       logger,
	}
}

// Create は給与行を作成する。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Payroll, error) {
	if input.EmployeeID == "" {
		return nil, model.NewValidationError("従業員IDは必須です")
	}
	if input.PayPeriodStart.IsZero() || input.PayPeriodEnd.IsZero() {
		return nil, model.NewValidationError("支給期間は必須です")
	}
	if input.PayPeriodEnd.Before(input.PayPeriodStart) {
		return nil, model.NewValidationError("期間終了日は開始日以降を指定してください")
	}
	if input.BasicSalary < 0 || input.Allowances < 0 || input.Deductions < 0 {
		return nil, model.NewValidationError("金額に負の値は指定できません")
	}

	emp, err := s.employeeRepo.FindByID(ctx, input.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("従業員の取得に失敗しました: %w", err)
	}
	if emp == nil {
		return nil, model.NewNotFoundError("従業員", input.EmployeeID)
	}

	p := &model.Payroll{
		PayrollID:      uuid.New().String(),
		EmployeeID:     input.EmployeeID,
		PayPeriodStart: input.PayPeriodStart,
		PayPeriodEnd:   input.PayPeriodEnd,
		BasicSalary:    input.BasicSalary,
		Allowances:     input.Allowances,
		Deductions:     input.Deductions,
		Status:         model.PayrollDraft,
		Notes:          input.Notes,
	}
	if err := s.payrollRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	// 導出列（gross/net）はアプリ側でも表示用に反映する
	p.GrossSalary = p.BasicSalary + p.Allowances
	p.NetSalary = p.GrossSalary - p.Deductions
	return p, nil
}

// Get は指定IDの給与行を返す。
func (s *Service) Get(ctx context.Context, payrollID string) (*model.Payroll, error) {
	p, err := s.payrollRepo.FindByID(ctx, payrollID)
	if err != nil {
		return nil, fmt.Errorf("給与の取得に失敗しました: %w", err)
	}
	if p == nil {
		return nil, model.NewNotFoundError("給与", payrollID)
	}
	return p, nil
}

// Update はDRAFT状態の給与行の金額・備考を更新する。
func (s *Service) Update(ctx context.Context, payrollID string, input UpdateInput) (*model.Payroll, error) {
	if input.BasicSalary < 0 || input.Allowances < 0 || input.Deductions < 0 {
		return nil, model.NewValidationError("金額に負の値は指定できません")
	}

	p, err := s.payrollRepo.FindByID(ctx, payrollID)
	if err != nil {
		return nil, fmt.Errorf("給与の取得に失敗しました: %w", err)
	}
	if p == nil {
		return nil, model.NewNotFoundError("給与", payrollID)
	}

	p.BasicSalary = input.BasicSalary
	p.Allowances = input.Allowances
	p.Deductions = input.Deductions
	p.Notes = input.Notes

	updated, err := s.payrollRepo.UpdateAmounts(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("給与の更新に失敗しました: %w", err)
	}
	if !updated {
		// DRAFT以外の行は金額を変更できない
		return nil, model.NewInvalidTransitionError(string(p.Status), string(model.PayrollDraft))
	}

	p.GrossSalary = p.BasicSalary + p.Allowances
	p.NetSalary = p.GrossSalary - p.Deductions
	return p, nil
}

// Process はDRAFT状態の給与行をPROCESSEDへ遷移させる。
func (s *Service) Process(ctx context.Context, payrollID string, method model.PaymentMethod, txRef string) (*model.Payroll, error) {
	switch method {
	case model.PaymentBankTransfer, model.PaymentCheck, model.PaymentCash:
	default:
		return nil, model.NewValidationError(fmt.Sprintf("不正な支払方法です: %s", method))
	}

	p, err := s.payrollRepo.FindByID(ctx, payrollID)
	if err != nil {
		return nil, fmt.Errorf("給与の取得に失敗しました: %w", err)
	}
	if p == nil {
		return nil, model.NewNotFoundError("給与", payrollID)
	}

	transitioned, err := s.payrollRepo.MarkProcessed(ctx, payrollID, method, txRef)
	if err != nil {
		return nil, fmt.Errorf("給与処理の遷移に失敗しました: %w", err)
	}
	if !transitioned {
		return nil, model.NewInvalidTransitionError(string(p.Status), string(model.PayrollProcessed))
	}

	p.Status = model.PayrollProcessed
	p.PaymentMethod = &method
	p.TransactionReference = txRef
	return p, nil
}

// MarkPaid はPROCESSED状態の給与行をPAIDへ遷移させ、支払日を記録する。
func (s *Service) MarkPaid(ctx context.Context, payrollID string, paymentDate time.Time) (*model.Payroll, error) {
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	p, err := s.payrollRepo.FindByID(ctx, payrollID)
	if err != nil {
		return nil, fmt.Errorf("給与の取得に失敗しました: %w", err)
	}
	if p == nil {
		return nil, model.NewNotFoundError("給与", payrollID)
	}

	transitioned, err := s.payrollRepo.MarkPaid(ctx, payrollID, paymentDate)
	if err != nil {
		return nil, fmt.Errorf("支払済みへの遷移に失敗しました: %w", err)
	}
	if !transitioned {
		return nil, model.NewInvalidTransitionError(string(p.Status), string(model.PayrollPaid))
	}

	p.Status = model.PayrollPaid
	p.PaymentDate = &paymentDate
	return p, nil
}

// List は給与行一覧を返す。employeeIDが空でない場合は従業員で絞り込む。
func (s *Service) List(ctx context.Context, employeeID string) ([]*model.Payroll, error) {
	var (
		payrolls []*model.Payroll
		err      error
	)
	if employeeID != "" {
		payrolls, err = s.payrollRepo.ListByEmployee(ctx, employeeID)
	} else {
		payrolls, err = s.payrollRepo.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("給与一覧の取得に失敗しました: %w", err)
	}
	return payrolls, nil
}

// ListByPeriod は支給期間が重なる給与行を返す。
func (s *Service) ListByPeriod(ctx context.Context, start, end time.Time) ([]*model.Payroll, error) {
	if end.Before(start) {
		return nil, model.NewValidationError("期間終了日は開始日以降を指定してください")
	}
	payrolls, err := s.payrollRepo.ListByPeriod(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("期間別給与の取得に失敗しました: %w", err)
	}
	return payrolls, nil
}

// GenerateDrafts は指定期間の給与行が存在しない全ACTIVE従業員に
// 給与ドラフトを一括生成する。再実行しても既存行は変更されない。
func (s *Service) GenerateDrafts(ctx context.Context, periodStart, periodEnd time.Time, defaultBasicSalary float64) (*RunResult, error) {
	if periodEnd.Before(periodStart) {
		return nil, model.NewValidationError("期間終了日は開始日以降を指定してください")
	}

	employees, err := s.payrollRepo.ListEmployeesWithoutPayroll(ctx, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("対象従業員の取得に失敗しました: %w", err)
	}

	result := &RunResult{PeriodStart: periodStart, PeriodEnd: periodEnd}
	for _, emp := range employees {
		p := &model.Payroll{
			PayrollID:      uuid.New().String(),
			EmployeeID:     emp.EmployeeID,
			PayPeriodStart: periodStart,
			PayPeriodEnd:   periodEnd,
			BasicSalary:    defaultBasicSalary,
			Status:         model.PayrollDraft,
			Notes:          "自動生成されたドラフト",
		}
		if err := s.payrollRepo.Create(ctx, p); err != nil {
			// 並行実行との競合による重複は飛ばして続行する
			s.logger.Warn("給与ドラフトの生成をスキップ", "employee_id", emp.EmployeeID, "error", err)
			result.Skipped++
			continue
		}
		result.Created++
	}

	s.logger.Info("給与ドラフトの一括生成が完了",
		"period_start", periodStart.Format("2006-01-02"),
		"period_end", periodEnd.Format("2006-01-02"),
		"created", result.Created,
		"skipped", result.Skipped,
	)
	return result, nil
}
