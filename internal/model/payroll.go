// Package model はドメインモデルを定義する。
package model

import "time"

// PayrollStatus は給与計算の状態を表す。
// DRAFT → PROCESSED → PAID の一方向にのみ遷移する。
type PayrollStatus string

const (
	PayrollDraft     PayrollStatus = "DRAFT"
	PayrollProcessed PayrollStatus = "PROCESSED"
	PayrollPaid      PayrollStatus = "PAID"
)

// PaymentMethod は支払方法を表す。
type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentCheck        PaymentMethod = "CHECK"
	PaymentCash         PaymentMethod = "CASH"
)

// Payroll は従業員1人の1支給期間分の給与を表す。
// GrossSalary = BasicSalary + Allowances、NetSalary = GrossSalary - Deductions。
// 導出列はDB側で生成され、アプリケーションは読み取りのみ行う。
type Payroll struct {
	PayrollID            string
	EmployeeID           string
	PayPeriodStart       time.Time
	PayPeriodEnd         time.Time
	PaymentDate          *time.Time
	BasicSalary          float64
	Allowances           float64
	Deductions           float64
	GrossSalary          float64
	NetSalary            float64
	Status               PayrollStatus
	PaymentMethod        *PaymentMethod
	TransactionReference string
	Notes                string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
