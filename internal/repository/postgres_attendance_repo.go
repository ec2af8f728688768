package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/teamify/internal/model"
)

// PostgresAttendanceRepo はPostgreSQLを使用した勤怠リポジトリ。
type PostgresAttendanceRepo struct {
	db *sql.DB
}

// NewPostgresAttendanceRepo はPostgresAttendanceRepoを生成する。
func NewPostgresAttendanceRepo(db *sql.DB) *PostgresAttendanceRepo {
	return &PostgresAttendanceRepo{db: db}
}

const attendanceColumns = `attendance_id, employee_id, date, check_in_time, check_out_time,
	status, work_hours, location, notes, created_at, updated_at`

// scanAttendance は1行分の勤怠記録を読み取る。
func scanAttendance(scan func(dest ...any) error) (*model.Attendance, error) {
	att := &model.Attendance{}
	var checkIn, checkOut sql.NullTime
	var workHours sql.NullFloat64

	if err := scan(
		&att.AttendanceID, &att.EmployeeID, &att.Date,
		&checkIn, &checkOut, &att.Status, &workHours,
		&att.Location, &att.Notes, &att.CreatedAt, &att.UpdatedAt,
	); err != nil {
		return nil, err
	}

	att.CheckInTime = timePtr(checkIn)
	att.CheckOutTime = timePtr(checkOut)
	att.WorkHours = floatPtr(workHours)
	return att, nil
}

// Upsert は従業員×日付で勤怠を冪等にUPSERTし、最終的な行を返す。
// 既存行がある場合は打刻時刻・区分・メモを上書きする。
func (r *PostgresAttendanceRepo) Upsert(ctx context.Context, att *model.Attendance) (*model.Attendance, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO attendance (attendance_id, employee_id, date, check_in_time, check_out_time,
		                         status, work_hours, location, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (employee_id, date) DO UPDATE SET
		    check_in_time = COALESCE(EXCLUDED.check_in_time, attendance.check_in_time),
		    check_out_time = COALESCE(EXCLUDED.check_out_time, attendance.check_out_time),
		    status = EXCLUDED.status,
		    work_hours = COALESCE(EXCLUDED.work_hours, attendance.work_hours),
		    location = EXCLUDED.location,
		    notes = EXCLUDED.notes,
		    updated_at = now()
		 RETURNING `+attendanceColumns,
		att.AttendanceID, att.EmployeeID, att.Date,
		nullTimePtr(att.CheckInTime), nullTimePtr(att.CheckOutTime),
		att.Status, nullFloatPtr(att.WorkHours),
		att.Location, att.Notes, att.CreatedAt, att.UpdatedAt,
	)
	saved, err := scanAttendance(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("勤怠のUPSERTに失敗しました: %w", err)
	}
	return saved, nil
}

// FindByID は指定IDの勤怠記録を取得する。見つからない場合はnilを返す。
func (r *PostgresAttendanceRepo) FindByID(ctx context.Context, attendanceID string) (*model.Attendance, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance WHERE attendance_id = $1`,
		attendanceID,
	)
	att, err := scanAttendance(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("勤怠記録の取得に失敗しました: %w", err)
	}
	return att, nil
}

// FindByEmployeeAndDate は従業員×日付で勤怠記録を検索する。見つからない場合はnilを返す。
func (r *PostgresAttendanceRepo) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*model.Attendance, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance
		 WHERE employee_id = $1 AND date = $2`,
		employeeID, date,
	)
	att, err := scanAttendance(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("勤怠記録の検索に失敗しました: %w", err)
	}
	return att, nil
}

// Update は勤怠記録を更新する。
func (r *PostgresAttendanceRepo) Update(ctx context.Context, att *model.Attendance) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE attendance SET
		    check_in_time = $2, check_out_time = $3, status = $4,
		    work_hours = $5, location = $6, notes = $7, updated_at = now()
		 WHERE attendance_id = $1`,
		att.AttendanceID,
		nullTimePtr(att.CheckInTime), nullTimePtr(att.CheckOutTime),
		att.Status, nullFloatPtr(att.WorkHours), att.Location, att.Notes,
	)
	if err != nil {
		return fmt.Errorf("勤怠記録の更新に失敗しました: %w", err)
	}
	return nil
}

// ListByDate は指定日の全従業員の勤怠を返す。
func (r *PostgresAttendanceRepo) ListByDate(ctx context.Context, date time.Time) ([]*model.Attendance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance WHERE date = $1`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("日次勤怠の取得に失敗しました: %w", err)
	}
	return collectAttendance(rows)
}

// ListByEmployeeRange は従業員の期間内勤怠を日付昇順で返す。
func (r *PostgresAttendanceRepo) ListByEmployeeRange(ctx context.Context, employeeID string, start, end time.Time) ([]*model.Attendance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance
		 WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		 ORDER BY date`,
		employeeID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("期間内勤怠の取得に失敗しました: %w", err)
	}
	return collectAttendance(rows)
}

// collectAttendance は結果セットを走査して勤怠のスライスを返す。
func collectAttendance(rows *sql.Rows) ([]*model.Attendance, error) {
	defer rows.Close()

	var records []*model.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("勤怠の読み取りに失敗しました: %w", err)
		}
		records = append(records, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("勤怠の走査に失敗しました: %w", err)
	}
	return records, nil
}

// CountByStatusOnDate は指定日の勤怠区分ごとの件数を返す。
func (r *PostgresAttendanceRepo) CountByStatusOnDate(ctx context.Context, date time.Time) (map[model.AttendanceStatus]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, count(*) FROM attendance WHERE date = $1 GROUP BY status`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("勤怠区分別件数の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.AttendanceStatus]int)
	for rows.Next() {
		var status model.AttendanceStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("勤怠区分別件数の読み取りに失敗しました: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("勤怠区分別件数の走査に失敗しました: %w", err)
	}
	return counts, nil
}

// ListHolidaysBetween は期間内の会社休日を日付昇順で返す。
func (r *PostgresAttendanceRepo) ListHolidaysBetween(ctx context.Context, start, end time.Time) ([]*model.Holiday, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT holiday_id, holiday_name, holiday_date, is_mandatory, created_at
		 FROM holidays
		 WHERE holiday_date BETWEEN $1 AND $2
		 ORDER BY holiday_date`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("休日一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var holidays []*model.Holiday
	for rows.Next() {
		h := &model.Holiday{}
		if err := rows.Scan(&h.HolidayID, &h.HolidayName, &h.HolidayDate, &h.IsMandatory, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("休日の読み取りに失敗しました: %w", err)
		}
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("休日の走査に失敗しました: %w", err)
	}
	return holidays, nil
}

// compile-time interface check
var _ AttendanceRepository = (*PostgresAttendanceRepo)(nil)
