// Package model はドメインモデルを定義する。
package model

import "time"

// AttendanceStatus は勤怠区分を表す。
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceHalfDay AttendanceStatus = "HALF_DAY"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendanceOnLeave AttendanceStatus = "ON_LEAVE"
	AttendanceHoliday AttendanceStatus = "HOLIDAY"
)

// IsValid はAttendanceStatusが定義済みの値かどうかを返す。
func (s AttendanceStatus) IsValid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceHalfDay,
		AttendanceLate, AttendanceOnLeave, AttendanceHoliday:
		return true
	}
	return false
}

// Attendance は従業員1人の1日分の勤怠記録を表す。
// 従業員×日付で最大1行。WorkHoursは未打刻の場合nil。
type Attendance struct {
	AttendanceID string
	EmployeeID   string
	Date         time.Time
	CheckInTime  *time.Time
	CheckOutTime *time.Time
	Status       AttendanceStatus
	WorkHours    *float64
	Location     string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Holiday は会社休日を表す。
type Holiday struct {
	HolidayID   string
	HolidayName string
	HolidayDate time.Time
	IsMandatory bool
	CreatedAt   time.Time
}
