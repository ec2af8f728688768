package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/teamify/internal/model"
)

// PostgresPerformanceRepo はPostgreSQLを使用した人事評価リポジトリ。
type PostgresPerformanceRepo struct {
	db *sql.DB
}

// NewPostgresPerformanceRepo はPostgresPerformanceRepoを生成する。
func NewPostgresPerformanceRepo(db *sql.DB) *PostgresPerformanceRepo {
	return &PostgresPerformanceRepo{db: db}
}

const reviewColumns = `review_id, employee_id, reviewer_id, review_period_start, review_period_end,
	review_date, overall_rating, technical_rating, communication_rating,
	teamwork_rating, leadership_rating, punctuality_rating,
	strengths, areas_for_improvement, goals_achieved, comments, status,
	created_at, updated_at`

// scanReview は1行分の評価を読み取る。
func scanReview(scan func(dest ...any) error) (*model.PerformanceReview, error) {
	rev := &model.PerformanceReview{}
	var periodStart, periodEnd sql.NullTime
	var overall, technical, communication, teamwork, leadership, punctuality sql.NullFloat64

	if err := scan(
		&rev.ReviewID, &rev.EmployeeID, &rev.ReviewerID,
		&periodStart, &periodEnd, &rev.ReviewDate,
		&overall, &technical, &communication,
		&teamwork, &leadership, &punctuality,
		&rev.Strengths, &rev.AreasForImprovement, &rev.GoalsAchieved,
		&rev.Comments, &rev.Status, &rev.CreatedAt, &rev.UpdatedAt,
	); err != nil {
		return nil, err
	}

	rev.ReviewPeriodStart = timePtr(periodStart)
	rev.ReviewPeriodEnd = timePtr(periodEnd)
	rev.OverallRating = floatPtr(overall)
	rev.TechnicalRating = floatPtr(technical)
	rev.CommunicationRating = floatPtr(communication)
	rev.TeamworkRating = floatPtr(teamwork)
	rev.LeadershipRating = floatPtr(leadership)
	rev.PunctualityRating = floatPtr(punctuality)
	return rev, nil
}

// CreateReview は評価を作成する。
func (r *PostgresPerformanceRepo) CreateReview(ctx context.Context, review *model.PerformanceReview) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO performance_reviews (review_id, employee_id, reviewer_id,
		                                  review_period_start, review_period_end, review_date,
		                                  overall_rating, technical_rating, communication_rating,
		                                  teamwork_rating, leadership_rating, punctuality_rating,
		                                  strengths, areas_for_improvement, goals_achieved, comments,
		                                  status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		review.ReviewID, review.EmployeeID, review.ReviewerID,
		nullTimePtr(review.ReviewPeriodStart), nullTimePtr(review.ReviewPeriodEnd), review.ReviewDate,
		nullFloatPtr(review.OverallRating), nullFloatPtr(review.TechnicalRating),
		nullFloatPtr(review.CommunicationRating), nullFloatPtr(review.TeamworkRating),
		nullFloatPtr(review.LeadershipRating), nullFloatPtr(review.PunctualityRating),
		review.Strengths, review.AreasForImprovement, review.GoalsAchieved, review.Comments,
		review.Status, review.CreatedAt, review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("評価の作成に失敗しました: %w", err)
	}
	return nil
}

// FindReviewByID は指定IDの評価を取得する。見つからない場合はnilを返す。
func (r *PostgresPerformanceRepo) FindReviewByID(ctx context.Context, reviewID string) (*model.PerformanceReview, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM performance_reviews WHERE review_id = $1`,
		reviewID,
	)
	rev, err := scanReview(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("評価の取得に失敗しました: %w", err)
	}
	return rev, nil
}

// UpdateReview は評価を更新する。
func (r *PostgresPerformanceRepo) UpdateReview(ctx context.Context, review *model.PerformanceReview) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE performance_reviews SET
		    review_period_start = $2, review_period_end = $3, review_date = $4,
		    overall_rating = $5, technical_rating = $6, communication_rating = $7,
		    teamwork_rating = $8, leadership_rating = $9, punctuality_rating = $10,
		    strengths = $11, areas_for_improvement = $12, goals_achieved = $13,
		    comments = $14, status = $15, updated_at = now()
		 WHERE review_id = $1`,
		review.ReviewID,
		nullTimePtr(review.ReviewPeriodStart), nullTimePtr(review.ReviewPeriodEnd), review.ReviewDate,
		nullFloatPtr(review.OverallRating), nullFloatPtr(review.TechnicalRating),
		nullFloatPtr(review.CommunicationRating), nullFloatPtr(review.TeamworkRating),
		nullFloatPtr(review.LeadershipRating), nullFloatPtr(review.PunctualityRating),
		review.Strengths, review.AreasForImprovement, review.GoalsAchieved,
		review.Comments, review.Status,
	)
	if err != nil {
		return fmt.Errorf("評価の更新に失敗しました: %w", err)
	}
	return nil
}

// DeleteReview は指定IDの評価を削除する。
func (r *PostgresPerformanceRepo) DeleteReview(ctx context.Context, reviewID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM performance_reviews WHERE review_id = $1`,
		reviewID,
	)
	if err != nil {
		return fmt.Errorf("評価の削除に失敗しました: %w", err)
	}
	return nil
}

// ListReviews は全評価を評価日降順で返す。
func (r *PostgresPerformanceRepo) ListReviews(ctx context.Context) ([]*model.PerformanceReview, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM performance_reviews ORDER BY review_date DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("評価一覧の取得に失敗しました: %w", err)
	}
	return collectReviews(rows)
}

// ListReviewsByEmployee は従業員の評価を評価日降順で返す。
func (r *PostgresPerformanceRepo) ListReviewsByEmployee(ctx context.Context, employeeID string) ([]*model.PerformanceReview, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM performance_reviews
		 WHERE employee_id = $1 ORDER BY review_date DESC`,
		employeeID,
	)
	if err != nil {
		return nil, fmt.Errorf("従業員の評価の取得に失敗しました: %w", err)
	}
	return collectReviews(rows)
}

// ListCompletedReviews はCOMPLETED以降の評価を返す。集計の入力に使う。
func (r *PostgresPerformanceRepo) ListCompletedReviews(ctx context.Context) ([]*model.PerformanceReview, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM performance_reviews
		 WHERE status IN ('COMPLETED', 'ACKNOWLEDGED')
		 ORDER BY review_date DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("完了済み評価の取得に失敗しました: %w", err)
	}
	return collectReviews(rows)
}

// collectReviews は結果セットを走査して評価のスライスを返す。
func collectReviews(rows *sql.Rows) ([]*model.PerformanceReview, error) {
	defer rows.Close()

	var reviews []*model.PerformanceReview
	for rows.Next() {
		rev, err := scanReview(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("評価の読み取りに失敗しました: %w", err)
		}
		reviews = append(reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("評価の走査に失敗しました: %w", err)
	}
	return reviews, nil
}

// CreateGoal は目標を作成する。
func (r *PostgresPerformanceRepo) CreateGoal(ctx context.Context, goal *model.PerformanceGoal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO performance_goals (goal_id, employee_id, title, description, target_date,
		                                status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		goal.GoalID, goal.EmployeeID, goal.Title, goal.Description,
		nullTimePtr(goal.TargetDate), goal.Status, goal.CreatedAt, goal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("目標の作成に失敗しました: %w", err)
	}
	return nil
}

// UpdateGoal は目標を更新する。
func (r *PostgresPerformanceRepo) UpdateGoal(ctx context.Context, goal *model.PerformanceGoal) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE performance_goals SET
		    title = $2, description = $3, target_date = $4, status = $5, updated_at = now()
		 WHERE goal_id = $1`,
		goal.GoalID, goal.Title, goal.Description,
		nullTimePtr(goal.TargetDate), goal.Status,
	)
	if err != nil {
		return fmt.Errorf("目標の更新に失敗しました: %w", err)
	}
	return nil
}

// FindGoalByID は指定IDの目標を取得する。見つからない場合はnilを返す。
func (r *PostgresPerformanceRepo) FindGoalByID(ctx context.Context, goalID string) (*model.PerformanceGoal, error) {
	goal := &model.PerformanceGoal{}
	var targetDate sql.NullTime

	err := r.db.QueryRowContext(ctx,
		`SELECT goal_id, employee_id, title, description, target_date, status, created_at, updated_at
		 FROM performance_goals WHERE goal_id = $1`,
		goalID,
	).Scan(
		&goal.GoalID, &goal.EmployeeID, &goal.Title, &goal.Description,
		&targetDate, &goal.Status, &goal.CreatedAt, &goal.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("目標の取得に失敗しました: %w", err)
	}

	goal.TargetDate = timePtr(targetDate)
	return goal, nil
}

// ListGoalsByEmployee は従業員の目標一覧を返す。
func (r *PostgresPerformanceRepo) ListGoalsByEmployee(ctx context.Context, employeeID string) ([]*model.PerformanceGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT goal_id, employee_id, title, description, target_date, status, created_at, updated_at
		 FROM performance_goals
		 WHERE employee_id = $1
		 ORDER BY created_at DESC`,
		employeeID,
	)
	if err != nil {
		return nil, fmt.Errorf("目標一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var goals []*model.PerformanceGoal
	for rows.Next() {
		goal := &model.PerformanceGoal{}
		var targetDate sql.NullTime
		if err := rows.Scan(
			&goal.GoalID, &goal.EmployeeID, &goal.Title, &goal.Description,
			&targetDate, &goal.Status, &goal.CreatedAt, &goal.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("目標の読み取りに失敗しました: %w", err)
		}
		goal.TargetDate = timePtr(targetDate)
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("目標の走査に失敗しました: %w", err)
	}
	return goals, nil
}

// compile-time interface check
var _ PerformanceRepository = (*PostgresPerformanceRepo)(nil)
