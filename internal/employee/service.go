// Package employee は従業員管理のドメインロジックを提供する。
package employee

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/teamify/internal/model"
	"github.com/hitoshi/teamify/internal/repository"
)

// CreateInput は従業員作成の入力を表す。
type CreateInput struct {
	UserID         *string
	FirstName      string
	LastName       string
	EmployeeCode   string
	Phone          string
	DepartmentID   *string
	PositionID     *string
	ManagerID      *string
	JoinDate       time.Time
	EmploymentType model.EmploymentType
}

// UpdateInput は従業員更新の入力を表す。
type UpdateInput struct {
	FirstName      string
	LastName       string
	Phone          string
	DepartmentID   *string
	PositionID     *string
	ManagerID      *string
	EmploymentType model.EmploymentType
}

// Service は従業員管理のサービス層。
type Service struct {
	employeeRepo repository.EmployeeRepository
	orgRepo      repository.OrgRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(employeeRepo repository.EmployeeRepository, orgRepo repository.OrgRepository) *Service {
	return &Service{
		employeeRepo: employeeRepo,
		orgRepo:      orgRepo,
	}
}

// List は従業員一覧を返す。
func (s *Service) List(ctx context.Context) ([]*model.Employee, error) {
	emps, err := s.employeeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("従業員一覧の取得に失敗しました: %w", err)
	}
	return emps, nil
}

// Get は指定IDの従業員を返す。
func (s *Service) Get(ctx context.Context, employeeID string) (*model.Employee, error) {
	emp, err := s.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("従業員の取得に失敗しました: %w", err)
	}
	if emp == nil {
		return nil, model.NewNotFoundError("従業員", employeeID)
	}
	return emp, nil
}

// GetByUserID はuser_idに紐づく従業員を返す。見つからない場合はnilを返す。
func (s *Service) GetByUserID(ctx context.Context, userID string) (*model.Employee, error) {
	emp, err := s.employeeRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("従業員の取得に失敗しました: %w", err)
	}
	return emp, nil
}

// Create は従業員を新規作成する。
// 部署・職位の参照先が存在するか検証してから挿入する。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Employee, error) {
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, model.NewValidationError("氏名は必須です")
	}
	if err := s.validateRelations(ctx, input.DepartmentID, input.PositionID); err != nil {
		return nil, err
	}

	if input.JoinDate.IsZero() {
		input.JoinDate = time.Now()
	}
	if input.EmploymentType == "" {
		input.EmploymentType = model.EmploymentFullTime
	}

	emp := &model.Employee{
		EmployeeID:       uuid.New().String(),
		UserID:           input.UserID,
		FirstName:        strings.TrimSpace(input.FirstName),
		LastName:         strings.TrimSpace(input.LastName),
		EmployeeCode:     input.EmployeeCode,
		Phone:            input.Phone,
		DepartmentID:     input.DepartmentID,
		PositionID:       input.PositionID,
		ManagerID:        input.ManagerID,
		JoinDate:         input.JoinDate,
		EmploymentStatus: model.EmploymentActive,
		EmploymentType:   input.EmploymentType,
	}
	if emp.EmployeeCode == "" {
		emp.EmployeeCode = generateEmployeeCode()
	}

	if err := s.employeeRepo.Create(ctx, emp); err != nil {
		return nil, err
	}
	return emp, nil
}

// Update は従業員情報を更新する。
func (s *Service) Update(ctx context.Context, employeeID string, input UpdateInput) (*model.Employee, error) {
	emp, err := s.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("従業員の取得に失敗しました: %w", err)
	}
	if emp == nil {
		return nil, model.NewNotFoundError("従業員", employeeID)
	}
	if err := s.validateRelations(ctx, input.DepartmentID, input.PositionID); err != nil {
		return nil, err
	}

	if input.FirstName != "" {
		emp.FirstName = strings.TrimSpace(input.FirstName)
	}
	if input.LastName != "" {
		emp.LastName = strings.TrimSpace(input.LastName)
	}
	emp.Phone = input.Phone
	emp.DepartmentID = input.DepartmentID
	emp.PositionID = input.PositionID
	emp.ManagerID = input.ManagerID
	if input.EmploymentType != "" {
		emp.EmploymentType = input.EmploymentType
	}

	if err := s.employeeRepo.Update(ctx, emp); err != nil {
		return nil, fmt.Errorf("従業員の更新に失敗しました: %w", err)
	}
	return emp, nil
}

// Offboard は従業員を退職・解雇状態に変更する。
// 在籍中（ACTIVE / ON_LEAVE）以外からの変更は許可しない。
func (s *Service) Offboard(ctx context.Context, employeeID string, status model.EmploymentStatus) error {
	if status != model.EmploymentTerminated && status != model.EmploymentResigned {
		return model.NewValidationError("退職処理の状態はTERMINATEDまたはRESIGNEDのみ指定できます")
	}

	emp, err := s.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("従業員の取得に失敗しました: %w", err)
	}
	if emp == nil {
		return model.NewNotFoundError("従業員", employeeID)
	}
	if emp.EmploymentStatus != model.EmploymentActive && emp.EmploymentStatus != model.EmploymentOnLeave {
		return model.NewInvalidTransitionError(string(emp.EmploymentStatus), string(status))
	}

	if err := s.employeeRepo.UpdateStatus(ctx, employeeID, status); err != nil {
		return fmt.Errorf("雇用状態の更新に失敗しました: %w", err)
	}
	return nil
}

// Search は氏名・従業員コードの部分一致で従業員を検索する。
func (s *Service) Search(ctx context.Context, query string) ([]*model.Employee, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}
	emps, err := s.employeeRepo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("従業員の検索に失敗しました: %w", err)
	}
	return emps, nil
}

// ListByDepartment は指定部署の従業員一覧を返す。
func (s *Service) ListByDepartment(ctx context.Context, departmentID string) ([]*model.Employee, error) {
	dept, err := s.orgRepo.FindDepartmentByID(ctx, departmentID)
	if err != nil {
		return nil, fmt.Errorf("部署の取得に失敗しました: %w", err)
	}
	if dept == nil {
		return nil, model.NewNotFoundError("部署", departmentID)
	}
	emps, err := s.employeeRepo.ListByDepartment(ctx, departmentID)
	if err != nil {
		return nil, fmt.Errorf("部署別従業員一覧の取得に失敗しました: %w", err)
	}
	return emps, nil
}

// StatusCounts は雇用状態ごとの従業員数を返す。
func (s *Service) StatusCounts(ctx context.Context) (map[model.EmploymentStatus]int, error) {
	counts, err := s.employeeRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("雇用状態別集計に失敗しました: %w", err)
	}
	return counts, nil
}

// ListDepartments は部署一覧を返す。
func (s *Service) ListDepartments(ctx context.Context) ([]*model.Department, error) {
	depts, err := s.orgRepo.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("部署一覧の取得に失敗しました: %w", err)
	}
	return depts, nil
}

// ListPositions は職位一覧を返す。departmentIDが空でない場合は部署で絞り込む。
func (s *Service) ListPositions(ctx context.Context, departmentID string) ([]*model.Position, error) {
	var (
		positions []*model.Position
		err       error
	)
	if departmentID != "" {
		positions, err = s.orgRepo.ListPositionsByDepartment(ctx, departmentID)
	} else {
		positions, err = s.orgRepo.ListPositions(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("職位一覧の取得に失敗しました: %w", err)
	}
	return positions, nil
}

// validateRelations は部署・職位の参照先が存在することを確認する。
func (s *Service) validateRelations(ctx context.Context, departmentID, positionID *string) error {
	if departmentID != nil {
		dept, err := s.orgRepo.FindDepartmentByID(ctx, *departmentID)
		if err != nil {
			return fmt.Errorf("部署の取得に失敗しました: %w", err)
		}
		if dept == nil {
			return model.NewNotFoundError("部署", *departmentID)
		}
	}
	if positionID != nil {
		pos, err := s.orgRepo.FindPositionByID(ctx, *positionID)
		if err != nil {
			return fmt.Errorf("職位の取得に失敗しました: %w", err)
		}
		if pos == nil {
			return model.NewNotFoundError("職位", *positionID)
		}
	}
	return nil
}

// generateEmployeeCode はUUID先頭8文字から従業員コードを生成する。
func generateEmployeeCode() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return "EMP-" + suffix
}
