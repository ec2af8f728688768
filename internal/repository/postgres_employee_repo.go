package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/teamify/internal/model"
)

// PostgresEmployeeRepo はPostgreSQLを使用した従業員リポジトリ。
type PostgresEmployeeRepo struct {
	db *sql.DB
}

// NewPostgresEmployeeRepo はPostgresEmployeeRepoを生成する。
func NewPostgresEmployeeRepo(db *sql.DB) *PostgresEmployeeRepo {
	return &PostgresEmployeeRepo{db: db}
}

const employeeColumns = `employee_id, user_id, first_name, last_name, employee_code, phone,
	department_id, position_id, manager_id, join_date,
	employment_status, employment_type, created_at, updated_at`

// scanEmployee は1行分の従業員を読み取る。
func scanEmployee(scan func(dest ...any) error) (*model.Employee, error) {
	emp := &model.Employee{}
	var userID, departmentID, positionID, managerID sql.NullString

	if err := scan(
		&emp.EmployeeID, &userID, &emp.FirstName, &emp.LastName,
		&emp.EmployeeCode, &emp.Phone,
		&departmentID, &positionID, &managerID, &emp.JoinDate,
		&emp.EmploymentStatus, &emp.EmploymentType,
		&emp.CreatedAt, &emp.UpdatedAt,
	); err != nil {
		return nil, err
	}

	emp.UserID = stringPtr(userID)
	emp.DepartmentID = stringPtr(departmentID)
	emp.PositionID = stringPtr(positionID)
	emp.ManagerID = stringPtr(managerID)
	return emp, nil
}

// FindByID は指定IDの従業員を取得する。見つからない場合はnilを返す。
func (r *PostgresEmployeeRepo) FindByID(ctx context.Context, employeeID string) (*model.Employee, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE employee_id = $1`,
		employeeID,
	)
	emp, err := scanEmployee(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("従業員の取得に失敗しました: %w", err)
	}
	return emp, nil
}

// FindByUserID はuser_idで従業員を検索する。見つからない場合はnilを返す。
func (r *PostgresEmployeeRepo) FindByUserID(ctx context.Context, userID string) (*model.Employee, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE user_id = $1`,
		userID,
	)
	emp, err := scanEmployee(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user_idによる従業員の検索に失敗しました: %w", err)
	}
	return emp, nil
}

// Insert は従業員を作成する。同一user_idの行が既に存在する場合は
// 何もせずfalseを返す。部分一意インデックスidx_employees_user_idに対する
// ON CONFLICT指定のため、user_idが非nullであることが前提。
func (r *PostgresEmployeeRepo) Insert(ctx context.Context, emp *model.Employee) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO employees (employee_id, user_id, first_name, last_name, employee_code, phone,
		                        department_id, position_id, manager_id, join_date,
		                        employment_status, employment_type, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (user_id) WHERE user_id IS NOT NULL DO NOTHING`,
		emp.EmployeeID, nullStringPtr(emp.UserID), emp.FirstName, emp.LastName,
		emp.EmployeeCode, emp.Phone,
		nullStringPtr(emp.DepartmentID), nullStringPtr(emp.PositionID),
		nullStringPtr(emp.ManagerID), emp.JoinDate,
		emp.EmploymentStatus, emp.EmploymentType,
		emp.CreatedAt, emp.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("従業員の作成に失敗しました: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("従業員作成結果の確認に失敗しました: %w", err)
	}
	return n > 0, nil
}

// Create はuser_id紐付けなしも含め従業員を無条件に作成する。
// 従業員コード重複時はmodel.ErrCodeDuplicateRecordのAPIErrorを返す。
func (r *PostgresEmployeeRepo) Create(ctx context.Context, emp *model.Employee) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO employees (employee_id, user_id, first_name, last_name, employee_code, phone,
		                        department_id, position_id, manager_id, join_date,
		                        employment_status, employment_type, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		emp.EmployeeID, nullStringPtr(emp.UserID), emp.FirstName, emp.LastName,
		emp.EmployeeCode, emp.Phone,
		nullStringPtr(emp.DepartmentID), nullStringPtr(emp.PositionID),
		nullStringPtr(emp.ManagerID), emp.JoinDate,
		emp.EmploymentStatus, emp.EmploymentType,
		emp.CreatedAt, emp.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDuplicateRecordError("従業員")
		}
		return fmt.Errorf("従業員の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は従業員情報を更新する。
func (r *PostgresEmployeeRepo) Update(ctx context.Context, emp *model.Employee) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE employees SET
		    first_name = $2, last_name = $3, phone = $4,
		    department_id = $5, position_id = $6, manager_id = $7,
		    join_date = $8, employment_status = $9, employment_type = $10,
		    updated_at = now()
		 WHERE employee_id = $1`,
		emp.EmployeeID, emp.FirstName, emp.LastName, emp.Phone,
		nullStringPtr(emp.DepartmentID), nullStringPtr(emp.PositionID),
		nullStringPtr(emp.ManagerID), emp.JoinDate,
		emp.EmploymentStatus, emp.EmploymentType,
	)
	if err != nil {
		return fmt.Errorf("従業員の更新に失敗しました: %w", err)
	}
	return nil
}

// UpdateStatus は雇用状態のみを更新する。
func (r *PostgresEmployeeRepo) UpdateStatus(ctx context.Context, employeeID string, status model.EmploymentStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE employees SET employment_status = $2, updated_at = now() WHERE employee_id = $1`,
		employeeID, status,
	)
	if err != nil {
		return fmt.Errorf("雇用状態の更新に失敗しました: %w", err)
	}
	return nil
}

// List は従業員一覧を氏名昇順で返す。
func (r *PostgresEmployeeRepo) List(ctx context.Context) ([]*model.Employee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees ORDER BY last_name, first_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("従業員一覧の取得に失敗しました: %w", err)
	}
	return collectEmployees(rows)
}

// Search は氏名・従業員コードの部分一致で検索する。
func (r *PostgresEmployeeRepo) Search(ctx context.Context, query string) ([]*model.Employee, error) {
	pattern := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees
		 WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR employee_code ILIKE $1
		 ORDER BY last_name, first_name`,
		pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("従業員の検索に失敗しました: %w", err)
	}
	return collectEmployees(rows)
}

// ListByDepartment は指定部署の従業員一覧を返す。
func (r *PostgresEmployeeRepo) ListByDepartment(ctx context.Context, departmentID string) ([]*model.Employee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees
		 WHERE department_id = $1
		 ORDER BY last_name, first_name`,
		departmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("部署の従業員一覧の取得に失敗しました: %w", err)
	}
	return collectEmployees(rows)
}

// collectEmployees は結果セットを走査して従業員のスライスを返す。
func collectEmployees(rows *sql.Rows) ([]*model.Employee, error) {
	defer rows.Close()

	var employees []*model.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("従業員の読み取りに失敗しました: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("従業員の走査に失敗しました: %w", err)
	}
	return employees, nil
}

// CountByStatus は雇用状態ごとの従業員数を返す。
func (r *PostgresEmployeeRepo) CountByStatus(ctx context.Context) (map[model.EmploymentStatus]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT employment_status, count(*) FROM employees GROUP BY employment_status`,
	)
	if err != nil {
		return nil, fmt.Errorf("雇用状態別件数の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.EmploymentStatus]int)
	for rows.Next() {
		var status model.EmploymentStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("雇用状態別件数の読み取りに失敗しました: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("雇用状態別件数の走査に失敗しました: %w", err)
	}
	return counts, nil
}

// CountAll は従業員の総数を返す。
func (r *PostgresEmployeeRepo) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM employees`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("従業員総数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// compile-time interface check
var _ EmployeeRepository = (*PostgresEmployeeRepo)(nil)
