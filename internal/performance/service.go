// Package performance は人事評価のドメインロジックを提供する。
package performance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/teamify/internal/dashboard"
	"github.com/hitoshi/teamify/internal/model"
	"github.com/hitoshi/teamify/internal/repository"
	"github.com/hitoshi/teamify/internal/security"
)

// ReviewInput は評価作成・更新の入力を表す。
type ReviewInput struct {
	EmployeeID          string
	ReviewerID          string
	ReviewPeriodStart   *time.Time
	ReviewPeriodEnd     *time.Time
	ReviewDate          time.Time
	OverallRating       *float64
	TechnicalRating     *float64
	CommunicationRating *float64
	TeamworkRating      *float64
	LeadershipRating    *float64
	PunctualityRating   *float64
	Strengths           string
	AreasForImprovement string
	GoalsAchieved       string
	Comments            string
	Status              model.ReviewStatus
}

// GoalInput は目標作成・更新の入力を表す。
type GoalInput struct {
	EmployeeID  string
	Title       string
	Description string
	TargetDate  *time.Time
	Status      model.GoalStatus
}

// Service は人事評価のサービス層。
// 自由記述フィールドは保存前にサニタイズする。
type Service struct {
	performanceRepo repository.PerformanceRepository
	employeeRepo    repository.EmployeeRepository
	sanitizer       security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	performanceRepo repository.PerformanceRepository,
	employeeRepo repository.EmployeeRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		performanceRepo: performanceRepo,
		employeeRepo:    employeeRepo,
		sanitizer:       sanitizer,
	}
}

// CreateReview は評価を作成する。
func (s *Service) CreateReview(ctx context.Context, input ReviewInput) (*model.PerformanceReview, error) {
	if input.EmployeeID == "" || input.ReviewerID == "" {
		return nil, model.NewValidationError("従業員IDとレビュアーIDは必須です")
	}
	if err := validateRatings(input); err != nil {
		return nil, err
	}

	emp, err := s.employeeRepo.FindByID(ctx, input.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("従業員の取得に失敗しました: %w", err)
	}
	if emp == nil {
		return nil, model.NewNotFoundError("従業員", input.EmployeeID)
	}

	status := input.Status
	if status == "" {
		status = model.ReviewDraft
	}
	reviewDate := input.ReviewDate
	if reviewDate.IsZero() {
		reviewDate = time.Now()
	}

	review := &model.PerformanceReview{
		ReviewID:            uuid.New().String(),
		EmployeeID:          input.EmployeeID,
		ReviewerID:          input.ReviewerID,
		ReviewPeriodStart:   input.ReviewPeriodStart,
		ReviewPeriodEnd:     input.ReviewPeriodEnd,
		ReviewDate:          reviewDate,
		OverallRating:       input.OverallRating,
		TechnicalRating:     input.TechnicalRating,
		CommunicationRating: input.CommunicationRating,
		TeamworkRating:      input.TeamworkRating,
		LeadershipRating:    input.LeadershipRating,
		PunctualityRating:   input.PunctualityRating,
		Strengths:           s.sanitizer.SanitizeText(input.Strengths),
		AreasForImprovement: s.sanitizer.SanitizeText(input.AreasForImprovement),
		GoalsAchieved:       s.sanitizer.SanitizeText(input.GoalsAchieved),
		Comments:            s.sanitizer.SanitizeRichText(input.Comments),
		Status:              status,
	}
	if err := s.performanceRepo.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("評価の作成に失敗しました: %w", err)
	}
	return review, nil
}

// GetReview は指定IDの評価を返す。
func (s *Service) GetReview(ctx context.Context, reviewID string) (*model.PerformanceReview, error) {
	review, err := s.performanceRepo.FindReviewByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("評価の取得に失敗しました: %w", err)
	}
	if review == nil {
		return nil, model.NewNotFoundError("評価", reviewID)
	}
	return review, nil
}

// UpdateReview は評価を更新する。ACKNOWLEDGED済みの評価は変更できない。
func (s *Service) UpdateReview(ctx context.Context, reviewID string, input ReviewInput) (*model.PerformanceReview, error) {
	review, err := s.performanceRepo.FindReviewByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("評価の取得に失敗しました: %w", err)
	}
	if review == nil {
		return nil, model.NewNotFoundError("評価", reviewID)
	}
	if review.Status == model.ReviewAcknowledged {
		return nil, model.NewInvalidTransitionError(string(review.Status), string(input.Status))
	}
	if err := validateRatings(input); err != nil {
		return nil, err
	}

	review.OverallRating = input.OverallRating
	review.TechnicalRating = input.TechnicalRating
	review.CommunicationRating = input.CommunicationRating
	review.TeamworkRating = input.TeamworkRating
	review.LeadershipRating = input.LeadershipRating
	review.PunctualityRating = input.PunctualityRating
	review.Strengths = s.sanitizer.SanitizeText(input.Strengths)
	review.AreasForImprovement = s.sanitizer.SanitizeText(input.AreasForImprovement)
	review.GoalsAchieved = s.sanitizer.SanitizeText(input.GoalsAchieved)
	review.Comments = s.sanitizer.SanitizeRichText(input.Comments)
	if input.Status != "" {
		review.Status = input.Status
	}
	if !input.ReviewDate.IsZero() {
		review.ReviewDate = input.ReviewDate
	}

	if err := s.performanceRepo.UpdateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("評価の更新に失敗しました: %w", err)
	}
	return review, nil
}

// DeleteReview は評価を削除する。
func (s *Service) DeleteReview(ctx context.Context, reviewID string) error {
	review, err := s.performanceRepo.FindReviewByID(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("評価の取得に失敗しました: %w", err)
	}
	if review == nil {
		return model.NewNotFoundError("評価", reviewID)
	}
	if err := s.performanceRepo.DeleteReview(ctx, reviewID); err != nil {
		return fmt.Errorf("評価の削除に失敗しました: %w", err)
	}
	return nil
}

// ListReviews は評価一覧を返す。employeeIDが空でない場合は従業員で絞り込む。
func (s *Service) ListReviews(ctx context.Context, employeeID string) ([]*model.PerformanceReview, error) {
	var (
		reviews []*model.PerformanceReview
		err     error
	)
	if employeeID != "" {
		reviews, err = s.performanceRepo.ListReviewsByEmployee(ctx, employeeID)
	} else {
		reviews, err = s.performanceRepo.ListReviews(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("評価一覧の取得に失敗しました: %w", err)
	}
	return reviews, nil
}

// EmployeeAverageRating は従業員の総合評点の平均を返す。
// 評点未入力の評価は分母から除外し、有効な評点がなければ0を返す。
func (s *Service) EmployeeAverageRating(ctx context.Context, employeeID string) (float64, error) {
	reviews, err := s.performanceRepo.ListReviewsByEmployee(ctx, employeeID)
	if err != nil {
		return 0, fmt.Errorf("評価一覧の取得に失敗しました: %w", err)
	}
	ratings := make([]*float64, 0, len(reviews))
	for _, r := range reviews {
		ratings = append(ratings, r.OverallRating)
	}
	return dashboard.AverageExcludingNil(ratings), nil
}

// CreateGoal は目標を作成する。
func (s *Service) CreateGoal(ctx context.Context, input GoalInput) (*model.PerformanceGoal, error) {
	if input.EmployeeID == "" {
		return nil, model.NewValidationError("従業員IDは必須です")
	}
	if input.Title == "" {
		return nil, model.NewValidationError("目標タイトルは必須です")
	}

	status := input.Status
	if status == "" {
		status = model.GoalNotStarted
	}
	goal := &model.PerformanceGoal{
		GoalID:      uuid.New().String(),
		EmployeeID:  input.EmployeeID,
		Title:       s.sanitizer.SanitizeText(input.Title),
		Description: s.sanitizer.SanitizeText(input.Description),
		TargetDate:  input.TargetDate,
		Status:      status,
	}
	if err := s.performanceRepo.CreateGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("目標の作成に失敗しました: %w", err)
	}
	return goal, nil
}

// UpdateGoal は目標を更新する。
func (s *Service) UpdateGoal(ctx context.Context, goalID string, input GoalInput) (*model.PerformanceGoal, error) {
	goal, err := s.performanceRepo.FindGoalByID(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("目標の取得に失敗しました: %w", err)
	}
	if goal == nil {
		return nil, model.NewNotFoundError("目標", goalID)
	}

	if input.Title != "" {
		goal.Title = s.sanitizer.SanitizeText(input.Title)
	}
	if input.Description != "" {
		goal.Description = s.sanitizer.SanitizeText(input.Description)
	}
	if input.TargetDate != nil {
		goal.TargetDate = input.TargetDate
	}
	if input.Status != "" {
		goal.Status = input.Status
	}

	if err := s.performanceRepo.UpdateGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("目標の更新に失敗しました: %w", err)
	}
	return goal, nil
}

// ListGoals は従業員の目標一覧を返す。
func (s *Service) ListGoals(ctx context.Context, employeeID string) ([]*model.PerformanceGoal, error) {
	goals, err := s.performanceRepo.ListGoalsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("目標一覧の取得に失敗しました: %w", err)
	}
	return goals, nil
}

// validateRatings は全評点が1〜5の範囲に収まることを確認する。
func validateRatings(input ReviewInput) error {
	ratings := []*float64{
		input.OverallRating,
		input.TechnicalRating,
		input.CommunicationRating,
		input.TeamworkRating,
		input.LeadershipRating,
		input.PunctualityRating,
	}
	for _, r := range ratings {
		if r == nil {
			continue
		}
		if *r < 1 || *r > 5 {
			return model.NewValidationError(fmt.Sprintf("評点は1〜5の範囲で入力してください: %.1f", *r))
		}
	}
	return nil
}
