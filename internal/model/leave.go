// Package model はドメインモデルを定義する。
package model

import "time"

// LeaveStatus は休暇申請の状態を表す。
type LeaveStatus string

const (
	LeavePending   LeaveStatus = "PENDING"
	LeaveApproved  LeaveStatus = "APPROVED"
	LeaveRejected  LeaveStatus = "REJECTED"
	LeaveCancelled LeaveStatus = "CANCELLED"
)

// LeaveType は休暇種別（年次有給、病気休暇等）を表す。
type LeaveType struct {
	LeaveTypeID        string
	TypeName           string
	Description        string
	DefaultDaysPerYear float64
	IsPaid             bool
	CreatedAt          time.Time
}

// LeaveBalance は従業員×休暇種別×年度ごとの残日数を表す。
type LeaveBalance struct {
	LeaveBalanceID string
	EmployeeID     string
	LeaveTypeID    string
	Year           int
	TotalDays      float64
	UsedDays       float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RemainingDays は残日数を返す。
func (b *LeaveBalance) RemainingDays() float64 {
	return b.TotalDays - b.UsedDays
}

// LeaveRequest は休暇申請を表す。
// 承認・却下時にReviewedBy/ReviewedDate/ReviewerCommentsが設定される。
type LeaveRequest struct {
	LeaveRequestID   string
	EmployeeID       string
	LeaveTypeID      string
	StartDate        time.Time
	EndDate          time.Time
	TotalDays        float64
	Reason           string
	Status           LeaveStatus
	AppliedDate      time.Time
	ReviewedBy       *string
	ReviewedDate     *time.Time
	ReviewerComments string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
