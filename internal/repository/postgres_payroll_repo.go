package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/teamify/internal/model"
)

// PostgresPayrollRepo はPostgreSQLを使用した給与リポジトリ。
type PostgresPayrollRepo struct {
	db *sql.DB
}

// NewPostgresPayrollRepo はPostgresPayrollRepoを生成する。
func NewPostgresPayrollRepo(db *sql.DB) *PostgresPayrollRepo {
	return &PostgresPayrollRepo{db: db}
}

const payrollColumns = `payroll_id, employee_id, pay_period_start, pay_period_end, payment_date,
	basic_salary, allowances, deductions, gross_salary, net_salary,
	status, payment_method, transaction_reference, notes, created_at, updated_at`

// scanPayroll は1行分の給与を読み取る。
func scanPayroll(scan func(dest ...any) error) (*model.Payroll, error) {
	p := &model.Payroll{}
	var paymentDate sql.NullTime
	var paymentMethod sql.NullString

	if err := scan(
		&p.PayrollID, &p.EmployeeID, &p.PayPeriodStart, &p.PayPeriodEnd, &paymentDate,
		&p.BasicSalary, &p.Allowances, &p.Deductions, &p.GrossSalary, &p.NetSalary,
		&p.Status, &paymentMethod, &p.TransactionReference, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.PaymentDate = timePtr(paymentDate)
	if paymentMethod.Valid {
		m := model.PaymentMethod(paymentMethod.String)
		p.PaymentMethod = &m
	}
	return p, nil
}

// Create は給与行を作成する。同一従業員×期間の重複時は
// model.ErrCodeDuplicateRecordのAPIErrorを返す。
// gross_salary/net_salaryはDB側の導出列のため挿入しない。
func (r *PostgresPayrollRepo) Create(ctx context.Context, p *model.Payroll) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payroll (payroll_id, employee_id, pay_period_start, pay_period_end,
		                      basic_salary, allowances, deductions, status,
		                      transaction_reference, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.PayrollID, p.EmployeeID, p.PayPeriodStart, p.PayPeriodEnd,
		p.BasicSalary, p.Allowances, p.Deductions, p.Status,
		p.TransactionReference, p.Notes, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDuplicateRecordError("給与")
		}
		return fmt.Errorf("給与行の作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDの給与行を取得する。見つからない場合はnilを返す。
func (r *PostgresPayrollRepo) FindByID(ctx context.Context, payrollID string) (*model.Payroll, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+payrollColumns+` FROM payroll WHERE payroll_id = $1`,
		payrollID,
	)
	p, err := scanPayroll(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("給与行の取得に失敗しました: %w", err)
	}
	return p, nil
}

// UpdateAmounts はDRAFT状態の給与行の金額・備考を更新する。
// DRAFT以外の行は更新されずfalseを返す。
func (r *PostgresPayrollRepo) UpdateAmounts(ctx context.Context, p *model.Payroll) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE payroll SET
		    basic_salary = $2, allowances = $3, deductions = $4,
		    notes = $5, updated_at = now()
		 WHERE payroll_id = $1 AND status = 'DRAFT'`,
		p.PayrollID, p.BasicSalary, p.Allowances, p.Deductions, p.Notes,
	)
	if err != nil {
		return false, fmt.Errorf("給与行の更新に失敗しました: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("給与行更新結果の確認に失敗しました: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed はDRAFT→PROCESSEDの遷移を行う。遷移できたかどうかを返す。
func (r *PostgresPayrollRepo) MarkProcessed(ctx context.Context, payrollID string, method model.PaymentMethod, txRef string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE payroll SET
		    status = 'PROCESSED', payment_method = $2, transaction_reference = $3, updated_at = now()
		 WHERE payroll_id = $1 AND status = 'DRAFT'`,
		payrollID, method, txRef,
	)
	if err != nil {
		return false, fmt.Errorf("給与の処理済み遷移に失敗しました: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("処理済み遷移結果の確認に失敗しました: %w", err)
	}
	return n > 0, nil
}

// MarkPaid はPROCESSED→PAIDの遷移を行い支払日を記録する。遷移できたかどうかを返す。
func (r *PostgresPayrollRepo) MarkPaid(ctx context.Context, payrollID string, paymentDate time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE payroll SET status = 'PAID', payment_date = $2, updated_at = now()
		 WHERE payroll_id = $1 AND status = 'PROCESSED'`,
		payrollID, paymentDate,
	)
	if err != nil {
		return false, fmt.Errorf("給与の支払済み遷移に失敗しました: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("支払済み遷移結果の確認に失敗しました: %w", err)
	}
	return n > 0, nil
}

// List は全給与行を期間降順で返す。
func (r *PostgresPayrollRepo) List(ctx context.Context) ([]*model.Payroll, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+payrollColumns+` FROM payroll ORDER BY pay_period_start DESC, created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("給与一覧の取得に失敗しました: %w", err)
	}
	return collectPayrolls(rows)
}

// ListByEmployee は従業員の給与行を期間降順で返す。
func (r *PostgresPayrollRepo) ListByEmployee(ctx context.Context, employeeID string) ([]*model.Payroll, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+payrollColumns+` FROM payroll
		 WHERE employee_id = $1 ORDER BY pay_period_start DESC`,
		employeeID,
	)
	if err != nil {
		return nil, fmt.Errorf("従業員の給与一覧の取得に失敗しました: %w", err)
	}
	return collectPayrolls(rows)
}

// ListByPeriod は支給期間が重なる給与行を返す。
func (r *PostgresPayrollRepo) ListByPeriod(ctx context.Context, start, end time.Time) ([]*model.Payroll, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+payrollColumns+` FROM payroll
		 WHERE pay_period_start <= $2 AND pay_period_end >= $1
		 ORDER BY pay_period_start DESC`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("期間別給与の取得に失敗しました: %w", err)
	}
	return collectPayrolls(rows)
}

// collectPayrolls は結果セットを走査して給与のスライスを返す。
func collectPayrolls(rows *sql.Rows) ([]*model.Payroll, error) {
	defer rows.Close()

	var payrolls []*model.Payroll
	for rows.Next() {
		p, err := scanPayroll(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("給与の読み取りに失敗しました: %w", err)
		}
		payrolls = append(payrolls, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("給与の走査に失敗しました: %w", err)
	}
	return payrolls, nil
}

// ListEmployeesWithoutPayroll は指定期間の給与行が存在しないACTIVE従業員を返す。
// 一括ドラフト生成の入力に使う。
func (r *PostgresPayrollRepo) ListEmployeesWithoutPayroll(ctx context.Context, periodStart, periodEnd time.Time) ([]*model.Employee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.employee_id, e.user_id, e.first_name, e.last_name, e.employee_code, e.phone,
		        e.department_id, e.position_id, e.manager_id, e.join_date,
		        e.employment_status, e.employment_type, e.created_at, e.updated_at
		 FROM employees e
		 WHERE e.employment_status = 'ACTIVE'
		   AND NOT EXISTS (
		       SELECT 1 FROM payroll p
		       WHERE p.employee_id = e.employee_id
		         AND p.pay_period_start = $1 AND p.pay_period_end = $2
		   )
		 ORDER BY e.employee_code`,
		periodStart, periodEnd,
	)
	if err != nil {
		return nil, fmt.Errorf("給与未作成従業員の取得に失敗しました: %w", err)
	}
	return collectEmployees(rows)
}

// compile-time interface check
var _ PayrollRepository = (*PostgresPayrollRepo)(nil)
