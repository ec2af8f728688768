package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/teamify/internal/model"
)

// PostgresLeaveRepo はPostgreSQLを使用した休暇リポジトリ。
type PostgresLeaveRepo struct {
	db *sql.DB
}

// NewPostgresLeaveRepo はPostgresLeaveRepoを生成する。
func NewPostgresLeaveRepo(db *sql.DB) *PostgresLeaveRepo {
	return &PostgresLeaveRepo{db: db}
}

// ListTypes は休暇種別一覧を名前昇順で返す。
func (r *PostgresLeaveRepo) ListTypes(ctx context.Context) ([]*model.LeaveType, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT leave_type_id, type_name, description, default_days_per_year, is_paid, created_at
		 FROM leave_types ORDER BY type_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("休暇種別一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var types []*model.LeaveType
	for rows.Next() {
		lt := &model.LeaveType{}
		if err := rows.Scan(
			&lt.LeaveTypeID, &lt.TypeName, &lt.Description,
			&lt.DefaultDaysPerYear, &lt.IsPaid, &lt.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("休暇種別の読み取りに失敗しました: %w", err)
		}
		types = append(types, lt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("休暇種別の走査に失敗しました: %w", err)
	}
	return types, nil
}

// FindTypeByID は指定IDの休暇種別を取得する。見つからない場合はnilを返す。
func (r *PostgresLeaveRepo) FindTypeByID(ctx context.Context, leaveTypeID string) (*model.LeaveType, error) {
	lt := &model.LeaveType{}
	err := r.db.QueryRowContext(ctx,
		`SELECT leave_type_id, type_name, description, default_days_per_year, is_paid, created_at
		 FROM leave_types WHERE leave_type_id = $1`,
		leaveTypeID,
	).Scan(
		&lt.LeaveTypeID, &lt.TypeName, &lt.Description,
		&lt.DefaultDaysPerYear, &lt.IsPaid, &lt.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("休暇種別の取得に失敗しました: %w", err)
	}
	return lt, nil
}

// ListBalances は従業員×年度の残日数一覧を返す。
func (r *PostgresLeaveRepo) ListBalances(ctx context.Context, employeeID string, year int) ([]*model.LeaveBalance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT leave_balance_id, employee_id, leave_type_id, year, total_days, used_days, created_at, updated_at
		 FROM leave_balances
		 WHERE employee_id = $1 AND year = $2`,
		employeeID, year,
	)
	if err != nil {
		return nil, fmt.Errorf("残日数一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var balances []*model.LeaveBalance
	for rows.Next() {
		b := &model.LeaveBalance{}
		if err := rows.Scan(
			&b.LeaveBalanceID, &b.EmployeeID, &b.LeaveTypeID, &b.Year,
			&b.TotalDays, &b.UsedDays, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("残日数の読み取りに失敗しました: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("残日数の走査に失敗しました: %w", err)
	}
	return balances, nil
}

// FindBalance は従業員×休暇種別×年度の残日数を取得する。見つからない場合はnilを返す。
func (r *PostgresLeaveRepo) FindBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (*model.LeaveBalance, error) {
	b := &model.LeaveBalance{}
	err := r.db.QueryRowContext(ctx,
		`SELECT leave_balance_id, employee_id, leave_type_id, year, total_days, used_days, created_at, updated_at
		 FROM leave_balances
		 WHERE employee_id = $1 AND leave_type_id = $2 AND year = $3`,
		employeeID, leaveTypeID, year,
	).Scan(
		&b.LeaveBalanceID, &b.EmployeeID, &b.LeaveTypeID, &b.Year,
		&b.TotalDays, &b.UsedDays, &b.CreatedAt, &b.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("残日数の取得に失敗しました: %w", err)
	}
	return b, nil
}

// UpsertBalance は残日数行を冪等に作成する。既存行は変更しない。
func (r *PostgresLeaveRepo) UpsertBalance(ctx context.Context, balance *model.LeaveBalance) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO leave_balances (leave_balance_id, employee_id, leave_type_id, year,
		                             total_days, used_days, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (employee_id, leave_type_id, year) DO NOTHING`,
		balance.LeaveBalanceID, balance.EmployeeID, balance.LeaveTypeID, balance.Year,
		balance.TotalDays, balance.UsedDays, balance.CreatedAt, balance.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("残日数行の作成に失敗しました: %w", err)
	}
	return nil
}

// AddUsedDays は使用日数を加算する。
func (r *PostgresLeaveRepo) AddUsedDays(ctx context.Context, employeeID, leaveTypeID string, year int, days float64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE leave_balances SET used_days = used_days + $4, updated_at = now()
		 WHERE employee_id = $1 AND leave_type_id = $2 AND year = $3`,
		employeeID, leaveTypeID, year, days,
	)
	if err != nil {
		return fmt.Errorf("使用日数の加算に失敗しました: %w", err)
	}
	return nil
}

const leaveRequestColumns = `leave_request_id, employee_id, leave_type_id, start_date, end_date,
	total_days, reason, status, applied_date, reviewed_by, reviewed_date,
	reviewer_comments, created_at, updated_at`

// scanLeaveRequest は1行分の休暇申請を読み取る。
func scanLeaveRequest(scan func(dest ...any) error) (*model.LeaveRequest, error) {
	req := &model.LeaveRequest{}
	var reviewedBy sql.NullString
	var reviewedDate sql.NullTime

	if err := scan(
		&req.LeaveRequestID, &req.EmployeeID, &req.LeaveTypeID,
		&req.StartDate, &req.EndDate, &req.TotalDays, &req.Reason,
		&req.Status, &req.AppliedDate, &reviewedBy, &reviewedDate,
		&req.ReviewerComments, &req.CreatedAt, &req.UpdatedAt,
	); err != nil {
		return nil, err
	}

	req.ReviewedBy = stringPtr(reviewedBy)
	req.ReviewedDate = timePtr(reviewedDate)
	return req, nil
}

// CreateRequest は休暇申請を作成する。
func (r *PostgresLeaveRepo) CreateRequest(ctx context.Context, req *model.LeaveRequest) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO leave_requests (leave_request_id, employee_id, leave_type_id, start_date, end_date,
		                             total_days, reason, status, applied_date, reviewer_comments,
		                             created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		req.LeaveRequestID, req.EmployeeID, req.LeaveTypeID,
		req.StartDate, req.EndDate, req.TotalDays, req.Reason,
		req.Status, req.AppliedDate, req.ReviewerComments,
		req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("休暇申請の作成に失敗しました: %w", err)
	}
	return nil
}

// FindRequestByID は指定IDの休暇申請を取得する。見つからない場合はnilを返す。
func (r *PostgresLeaveRepo) FindRequestByID(ctx context.Context, requestID string) (*model.LeaveRequest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+leaveRequestColumns+` FROM leave_requests WHERE leave_request_id = $1`,
		requestID,
	)
	req, err := scanLeaveRequest(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("休暇申請の取得に失敗しました: %w", err)
	}
	return req, nil
}

// ListRequests は全休暇申請を申請日降順で返す。
func (r *PostgresLeaveRepo) ListRequests(ctx context.Context) ([]*model.LeaveRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+leaveRequestColumns+` FROM leave_requests ORDER BY applied_date DESC, created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("休暇申請一覧の取得に失敗しました: %w", err)
	}
	return collectLeaveRequests(rows)
}

// ListRequestsByStatus は指定状態の休暇申請を申請日降順で返す。
func (r *PostgresLeaveRepo) ListRequestsByStatus(ctx context.Context, status model.LeaveStatus) ([]*model.LeaveRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+leaveRequestColumns+` FROM leave_requests
		 WHERE status = $1 ORDER BY applied_date DESC, created_at DESC`,
		status,
	)
	if err != nil {
		return nil, fmt.Errorf("状態別休暇申請の取得に失敗しました: %w", err)
	}
	return collectLeaveRequests(rows)
}

// ListRequestsByEmployee は従業員の休暇申請を申請日降順で返す。
func (r *PostgresLeaveRepo) ListRequestsByEmployee(ctx context.Context, employeeID string) ([]*model.LeaveRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+leaveRequestColumns+` FROM leave_requests
		 WHERE employee_id = $1 ORDER BY applied_date DESC, created_at DESC`,
		employeeID,
	)
	if err != nil {
		return nil, fmt.Errorf("従業員の休暇申請の取得に失敗しました: %w", err)
	}
	return collectLeaveRequests(rows)
}

// collectLeaveRequests は結果セットを走査して休暇申請のスライスを返す。
func collectLeaveRequests(rows *sql.Rows) ([]*model.LeaveRequest, error) {
	defer rows.Close()

	var requests []*model.LeaveRequest
	for rows.Next() {
		req, err := scanLeaveRequest(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("休暇申請の読み取りに失敗しました: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("休暇申請の走査に失敗しました: %w", err)
	}
	return requests, nil
}

// CountRequestsByStatus は指定状態の休暇申請数を返す。
func (r *PostgresLeaveRepo) CountRequestsByStatus(ctx context.Context, status model.LeaveStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM leave_requests WHERE status = $1`,
		status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("状態別休暇申請数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// ReviewRequest は休暇申請の状態・レビュアー・コメントを更新する。
// 現在の状態がPENDINGの行のみを更新する。二重承認の競合はここで防ぐ。
func (r *PostgresLeaveRepo) ReviewRequest(ctx context.Context, requestID string, status model.LeaveStatus, reviewerID, comments string, reviewedAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE leave_requests SET
		    status = $2, reviewed_by = $3, reviewed_date = $4,
		    reviewer_comments = $5, updated_at = now()
		 WHERE leave_request_id = $1 AND status = 'PENDING'`,
		requestID, status, reviewerID, reviewedAt, comments,
	)
	if err != nil {
		return false, fmt.Errorf("休暇申請の審査に失敗しました: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("休暇申請審査結果の確認に失敗しました: %w", err)
	}
	return n > 0, nil
}

// compile-time interface check
var _ LeaveRepository = (*PostgresLeaveRepo)(nil)
