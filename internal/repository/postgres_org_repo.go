package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/teamify/internal/model"
)

// PostgresOrgRepo はPostgreSQLを使用した部署・職位リポジトリ。
type PostgresOrgRepo struct {
	db *sql.DB
}

// NewPostgresOrgRepo はPostgresOrgRepoを生成する。
func NewPostgresOrgRepo(db *sql.DB) *PostgresOrgRepo {
	return &PostgresOrgRepo{db: db}
}

// ListDepartments は部署一覧を名前昇順で返す。
func (r *PostgresOrgRepo) ListDepartments(ctx context.Context) ([]*model.Department, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT department_id, department_name, description, head_employee_id, created_at, updated_at
		 FROM departments ORDER BY department_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("部署一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var departments []*model.Department
	for rows.Next() {
		dept := &model.Department{}
		var headID sql.NullString
		if err := rows.Scan(
			&dept.DepartmentID, &dept.DepartmentName, &dept.Description,
			&headID, &dept.CreatedAt, &dept.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("部署の読み取りに失敗しました: %w", err)
		}
		dept.HeadEmployeeID = stringPtr(headID)
		departments = append(departments, dept)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("部署の走査に失敗しました: %w", err)
	}
	return departments, nil
}

// FindDepartmentByID は指定IDの部署を取得する。見つからない場合はnilを返す。
func (r *PostgresOrgRepo) FindDepartmentByID(ctx context.Context, departmentID string) (*model.Department, error) {
	dept := &model.Department{}
	var headID sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT department_id, department_name, description, head_employee_id, created_at, updated_at
		 FROM departments WHERE department_id = $1`,
		departmentID,
	).Scan(
		&dept.DepartmentID, &dept.DepartmentName, &dept.Description,
		&headID, &dept.CreatedAt, &dept.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("部署の取得に失敗しました: %w", err)
	}

	dept.HeadEmployeeID = stringPtr(headID)
	return dept, nil
}

// ListPositions は職位一覧を返す。
func (r *PostgresOrgRepo) ListPositions(ctx context.Context) ([]*model.Position, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT position_id, position_title, department_id, description, level, created_at, updated_at
		 FROM positions ORDER BY position_title`,
	)
	if err != nil {
		return nil, fmt.Errorf("職位一覧の取得に失敗しました: %w", err)
	}
	return collectPositions(rows)
}

// FindPositionByID は指定IDの職位を取得する。見つからない場合はnilを返す。
func (r *PostgresOrgRepo) FindPositionByID(ctx context.Context, positionID string) (*model.Position, error) {
	pos := &model.Position{}
	var departmentID sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT position_id, position_title, department_id, description, level, created_at, updated_at
		 FROM positions WHERE position_id = $1`,
		positionID,
	).Scan(
		&pos.PositionID, &pos.PositionTitle, &departmentID,
		&pos.Description, &pos.Level, &pos.CreatedAt, &pos.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("職位の取得に失敗しました: %w", err)
	}

	pos.DepartmentID = stringPtr(departmentID)
	return pos, nil
}

// ListPositionsByDepartment は指定部署の職位一覧を返す。
func (r *PostgresOrgRepo) ListPositionsByDepartment(ctx context.Context, departmentID string) ([]*model.Position, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT position_id, position_title, department_id, description, level, created_at, updated_at
		 FROM positions WHERE department_id = $1 ORDER BY position_title`,
		departmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("部署の職位一覧の取得に失敗しました: %w", err)
	}
	return collectPositions(rows)
}

// collectPositions は結果セットを走査して職位のスライスを返す。
func collectPositions(rows *sql.Rows) ([]*model.Position, error) {
	defer rows.Close()

	var positions []*model.Position
	for rows.Next() {
		pos := &model.Position{}
		var departmentID sql.NullString
		if err := rows.Scan(
			&pos.PositionID, &pos.PositionTitle, &departmentID,
			&pos.Description, &pos.Level, &pos.CreatedAt, &pos.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("職位の読み取りに失敗しました: %w", err)
		}
		pos.DepartmentID = stringPtr(departmentID)
		positions = append(positions, pos)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("職位の走査に失敗しました: %w", err)
	}
	return positions, nil
}

// CountEmployeesPerDepartment は部署IDごとの従業員数を返す。
func (r *PostgresOrgRepo) CountEmployeesPerDepartment(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT department_id, count(*) FROM employees
		 WHERE department_id IS NOT NULL
		 GROUP BY department_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("部署別従業員数の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var departmentID string
		var count int
		if err := rows.Scan(&departmentID, &count); err != nil {
			return nil, fmt.Errorf("部署別従業員数の読み取りに失敗しました: %w", err)
		}
		counts[departmentID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("部署別従業員数の走査に失敗しました: %w", err)
	}
	return counts, nil
}

// compile-time interface check
var _ OrgRepository = (*PostgresOrgRepo)(nil)
