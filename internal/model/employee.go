// Package model はドメインモデルを定義する。
package model

import "time"

// EmploymentStatus は雇用状態を表す。
type EmploymentStatus string

const (
	// EmploymentActive は在籍中。
	EmploymentActive EmploymentStatus = "ACTIVE"
	// EmploymentOnLeave は休職中。
	EmploymentOnLeave EmploymentStatus = "ON_LEAVE"
	// EmploymentTerminated は解雇済み。
	EmploymentTerminated EmploymentStatus = "TERMINATED"
	// EmploymentResigned は退職済み。
	EmploymentResigned EmploymentStatus = "RESIGNED"
)

// EmploymentType は雇用形態を表す。
type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "FULL_TIME"
	EmploymentPartTime EmploymentType = "PART_TIME"
	EmploymentContract EmploymentType = "CONTRACT"
	EmploymentIntern   EmploymentType = "INTERN"
)

// Employee は従業員の雇用情報を表す。
// UserIDはUserへのnull許容の逆参照で、非nullのUserIDごとに最大1行。
type Employee struct {
	EmployeeID       string
	UserID           *string
	FirstName        string
	LastName         string
	EmployeeCode     string
	Phone            string
	DepartmentID     *string
	PositionID       *string
	ManagerID        *string
	JoinDate         time.Time
	EmploymentStatus EmploymentStatus
	EmploymentType   EmploymentType
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Department は部署を表す。
type Department struct {
	DepartmentID   string
	DepartmentName string
	Description    string
	HeadEmployeeID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Position は職位を表す。
type Position struct {
	PositionID    string
	PositionTitle string
	DepartmentID  *string
	Description   string
	Level         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EmployeeProfile は従業員情報に部署・職位・メールを結合した表示用構造体。
// 関連情報はタイムアウト等で取得できなかった場合nilのまま返される。
type EmployeeProfile struct {
	Employee
	Department *Department
	Position   *Position
	Email      string
}
