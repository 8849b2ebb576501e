package dataset

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActiveContractStatus は有効な契約を示す正規化済みステータスです。
const ActiveContractStatus = "VIGENTE"

// Employee は従業員マスタの 1 行を表します。
type Employee struct {
	ID              string
	Name            string
	HireDate        *time.Time
	TerminationDate *time.Time
}

// PayrollEntry は給与支払いの 1 行を表します。
// EmployeeID の参照整合性は保証されません。
type PayrollEntry struct {
	PaymentDate  *time.Time
	EmployeeID   string
	EmployeeName string
	Amount       decimal.Decimal
	BankAccount  string
}

// AttendanceMark は出勤日 1 日分の打刻を表します。
type AttendanceMark struct {
	EmployeeID string
	Date       *time.Time
}

// AuthorizedAccount は支払いが許可された口座です。
type AuthorizedAccount struct {
	BankAccount string
}

// Contract は雇用契約を表します。Status は大文字に正規化されています。
type Contract struct {
	EmployeeID     string
	ContractNumber string
	Status         string
	StartDate      *time.Time
	EndDate        *time.Time
}

// IsActive は契約ステータスが有効かどうかを返します。
func (c Contract) IsActive() bool {
	return c.Status == ActiveContractStatus
}

// Covers は支払日が契約期間内かどうかを返します。開始日が欠損している場合は常に false です。
func (c Contract) Covers(paymentDate *time.Time) bool {
	if paymentDate == nil || c.StartDate == nil {
		return false
	}
	if paymentDate.Before(*c.StartDate) {
		return false
	}
	return c.EndDate == nil || !paymentDate.After(*c.EndDate)
}

// RelatedParty は口座の名義人として申告された関係者です。
type RelatedParty struct {
	BankAccount  string
	HolderName   string
	HolderID     string
	Relationship string
}

// HasHolder は名義人が特定できるかどうかを返します。
func (r RelatedParty) HasHolder() bool {
	return r.HolderName != "" || r.HolderID != ""
}
