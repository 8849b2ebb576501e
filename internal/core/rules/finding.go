// Package rules は給与データに対する不正兆候の検出ルールを提供します。
// すべてのルールは入力を変更しない純粋関数です。
package rules

import (
	"fmt"
	"sort"
	"time"

	"github.com/ogurasousui/payroll-forensics/internal/core/dataset"
	"github.com/shopspring/decimal"
)

// 検出理由の固定文言です。
const (
	ReasonNotInMaster           = "not in employee master"
	ReasonPaidAfterTermination  = "payment after termination date"
	ReasonNoFormalContract      = "no formal contract"
	ReasonContractNotActive     = "contract not active"
	ReasonOutsideContractRange  = "outside contract date range"
	ReasonUnauthorizedAccount   = "unauthorized bank account"
	insufficientAttendanceLabel = "insufficient attendance (<%d days)"
)

// InsufficientAttendanceReason は出勤不足の検出理由を返します。
func InsufficientAttendanceReason(minDays int) string {
	return fmt.Sprintf(insufficientAttendanceLabel, minDays)
}

// Finding は検出理由付きの給与支払い行です。
type Finding struct {
	dataset.PayrollEntry
	Reason string
}

// PostTerminationFinding は退職日以降の支払いです。
type PostTerminationFinding struct {
	Finding
	MasterName      string
	TerminationDate time.Time
}

// ContractFinding は契約上有効でない支払いです。契約が無い場合は契約情報が空です。
type ContractFinding struct {
	Finding
	ContractNumber string
	ContractStatus string
	StartDate      *time.Time
	EndDate        *time.Time
}

// AttendanceFinding は出勤日数が不足している月の支払いです。
type AttendanceFinding struct {
	Finding
	Period      string
	DaysPresent int
}

// RelatedPartyFinding は関係者名義の口座へ流れた幽霊社員への支払いです。
type RelatedPartyFinding struct {
	Finding
	HolderName   string
	HolderID     string
	Relationship string
}

// SharedAccount は複数の従業員が同じ口座を使用している状態の要約です。
type SharedAccount struct {
	BankAccount  string
	NumEmployees int
	TotalAmount  decimal.Decimal
}

// AccountHop は 1 人の従業員が複数の口座へ支払いを受けている状態です。
type AccountHop struct {
	EmployeeID  string
	NumAccounts int
}

// Bases は派生型のスライスから共通部分の Finding を取り出します。
func Bases[T interface{ base() Finding }](items []T) []Finding {
	out := make([]Finding, len(items))
	for i, item := range items {
		out[i] = item.base()
	}
	return out
}

func (f Finding) base() Finding { return f }

func sortFindings[T interface{ base() Finding }](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		return lessEntry(items[i].base().PayrollEntry, items[j].base().PayrollEntry)
	})
}

// lessEntry は支払日の昇順 (欠損は末尾)、次に従業員 ID の昇順で比較します。
func lessEntry(a, b dataset.PayrollEntry) bool {
	switch {
	case a.PaymentDate == nil && b.PaymentDate == nil:
	case a.PaymentDate == nil:
		return false
	case b.PaymentDate == nil:
		return true
	case !a.PaymentDate.Equal(*b.PaymentDate):
		return a.PaymentDate.Before(*b.PaymentDate)
	}
	return a.EmployeeID < b.EmployeeID
}
