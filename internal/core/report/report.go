// Package report は監査結果をシート単位の表にまとめます。
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ogurasousui/payroll-forensics/internal/core/audit"
	"github.com/ogurasousui/payroll-forensics/internal/core/benford"
	"github.com/ogurasousui/payroll-forensics/internal/core/dataset"
	"github.com/ogurasousui/payroll-forensics/internal/core/rules"
)

// MaxSheetName はワークブックのシート名の最大長です。
const MaxSheetName = 31

const (
	SheetPayrollSource          = "payroll_source"
	SheetEmployeesSource        = "employees_source"
	SheetAttendanceSource       = "attendance_source"
	SheetAuthorizedAccounts     = "authorized_accounts_source"
	SheetContractsSource        = "contracts_source"
	SheetRelatedPartiesSource   = "related_parties_source"
	SheetGhostByAbsence         = "ghost_by_absence"
	SheetPaidAfterTermination   = "paid_after_termination"
	SheetContractInvalid        = "contract_invalid"
	SheetInsufficientAttendance = "insufficient_attendance"
	SheetConsolidatedGhosts     = "consolidated_ghosts"
	SheetRelatedPartyTrace      = "related_party_trace"
	SheetSharedAccounts         = "shared_accounts"
	SheetSharedAccountsDetail   = "shared_accounts_detail"
	SheetAccountHopping         = "account_hopping"
	SheetUnauthorizedAccounts   = "unauthorized_accounts"
	SheetBenfordDetail          = "benford_detail"
	SheetBenfordStats           = "benford_stats"
	SheetSummary                = "summary"
)

// Sheet は 1 枚のシートです。セルの値は string, int, float64, time.Time, nil のいずれかです。
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Workbook はシートの順序付き集合です。
type Workbook struct {
	Sheets []Sheet
}

// Sheet は名前でシートを探します。
func (w Workbook) Sheet(name string) (Sheet, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return Sheet{}, false
}

// Names はシート名を並び順で返します。
func (w Workbook) Names() []string {
	out := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		out[i] = s.Name
	}
	return out
}

func (w *Workbook) add(name string, header []string, rows [][]any) {
	if len(rows) == 0 {
		return
	}
	if len(name) > MaxSheetName {
		name = name[:MaxSheetName]
	}
	w.Sheets = append(w.Sheets, Sheet{Name: name, Header: header, Rows: rows})
}

var (
	entryHeader    = []string{"payment_date", "employee_id", "employee_name", "amount", "bank_account"}
	findingHeader  = append(append([]string{}, entryHeader...), "reason")
	summaryHeader  = []string{"rule", "status", "findings", "note"}
	benfordHeader  = []string{"digit", "observed", "expected", "observed_pct", "expected_pct", "deviation_pct"}
	statsHeader    = []string{"metric", "value"}
	sharedHeader   = []string{"bank_account", "num_employees", "total_amount"}
	hoppingHeader  = []string{"employee_id", "num_accounts"}
	employeeHeader = []string{"id", "name", "hire_date", "termination_date"}
)

// Assemble は監査結果からワークブックを組み立てます。
// 入力テーブル、検出結果の順に並べ、0 行の表はシートを作りません。
// 末尾に各ルールの実行状況を示す summary シートを必ず置きます。
func Assemble(res *audit.Result) Workbook {
	var wb Workbook
	if res == nil {
		return wb
	}
	t := res.Tables

	wb.add(SheetPayrollSource, entryHeader, mapRows(t.Payroll, entryRow))
	wb.add(SheetEmployeesSource, employeeHeader, mapRows(t.Employees, func(e dataset.Employee) []any {
		return []any{e.ID, e.Name, cellDate(e.HireDate), cellDate(e.TerminationDate)}
	}))
	wb.add(SheetAttendanceSource, []string{"employee_id", "date"}, mapRows(t.Attendance, func(a dataset.AttendanceMark) []any {
		return []any{a.EmployeeID, cellDate(a.Date)}
	}))
	wb.add(SheetAuthorizedAccounts, []string{"bank_account"}, mapRows(t.AuthorizedAccounts, func(a dataset.AuthorizedAccount) []any {
		return []any{a.BankAccount}
	}))
	wb.add(SheetContractsSource, []string{"employee_id", "contract_number", "status", "start_date", "end_date"}, mapRows(t.Contracts, func(c dataset.Contract) []any {
		return []any{c.EmployeeID, c.ContractNumber, c.Status, cellDate(c.StartDate), cellDate(c.EndDate)}
	}))
	wb.add(SheetRelatedPartiesSource, []string{"bank_account", "holder_name", "holder_id", "relationship"}, mapRows(t.RelatedParties, func(r dataset.RelatedParty) []any {
		return []any{r.BankAccount, r.HolderName, r.HolderID, r.Relationship}
	}))

	wb.add(SheetGhostByAbsence, findingHeader, mapRows(res.GhostByAbsence, findingRow))
	wb.add(SheetPaidAfterTermination, append(append([]string{}, findingHeader...), "master_name", "termination_date"),
		mapRows(res.PaidAfterTermination, func(f rules.PostTerminationFinding) []any {
			return append(findingRow(f.Finding), f.MasterName, f.TerminationDate)
		}))
	wb.add(SheetContractInvalid, append(append([]string{}, findingHeader...), "contract_number", "contract_status", "start_date", "end_date"),
		mapRows(res.ContractInvalid, func(f rules.ContractFinding) []any {
			return append(findingRow(f.Finding), f.ContractNumber, f.ContractStatus, cellDate(f.StartDate), cellDate(f.EndDate))
		}))
	wb.add(SheetInsufficientAttendance, append(append([]string{}, findingHeader...), "period", "days_present"),
		mapRows(res.InsufficientAttendance, func(f rules.AttendanceFinding) []any {
			return append(findingRow(f.Finding), f.Period, f.DaysPresent)
		}))
	wb.add(SheetConsolidatedGhosts, findingHeader, mapRows(res.ConsolidatedGhosts, findingRow))
	wb.add(SheetRelatedPartyTrace, append(append([]string{}, findingHeader...), "holder_name", "holder_id", "relationship"),
		mapRows(res.RelatedParties, func(f rules.RelatedPartyFinding) []any {
			return append(findingRow(f.Finding), f.HolderName, f.HolderID, f.Relationship)
		}))
	wb.add(SheetSharedAccounts, sharedHeader, mapRows(res.SharedAccounts, func(s rules.SharedAccount) []any {
		return []any{s.BankAccount, s.NumEmployees, cellAmount(s.TotalAmount)}
	}))
	wb.add(SheetSharedAccountsDetail, entryHeader, mapRows(res.SharedAccountPayments, entryRow))
	wb.add(SheetAccountHopping, hoppingHeader, mapRows(res.AccountHopping, func(h rules.AccountHop) []any {
		return []any{h.EmployeeID, h.NumAccounts}
	}))
	wb.add(SheetUnauthorizedAccounts, findingHeader, mapRows(res.UnauthorizedAccounts, findingRow))

	if res.Ran(audit.RuleBenford) && !res.Benford.Empty() {
		wb.add(SheetBenfordDetail, benfordHeader, mapRows(res.Benford.Rows, func(r benford.DigitRow) []any {
			return []any{r.Digit, r.Observed, r.Expected, r.ObservedPct, r.ExpectedPct, r.DeviationPct}
		}))
		wb.add(SheetBenfordStats, statsHeader, [][]any{
			{"observations", res.Benford.Observations},
			{"chi_square", res.Benford.ChiSquare},
			{"critical_value", benford.CriticalValue},
			{"threshold_pct", res.Params.BenfordThresholdPct},
			{"outliers", len(res.BenfordOutliers)},
		})
	}

	wb.add(SheetSummary, summaryHeader, Summary(res))
	return wb
}

// Summary は各ルールの実行状況を summary シートの行として返します。
func Summary(res *audit.Result) [][]any {
	rows := make([][]any, 0, len(res.Statuses))
	for _, s := range res.Statuses {
		if s.Ran {
			rows = append(rows, []any{string(s.Rule), "ran", s.Findings, s.Note})
			continue
		}
		rows = append(rows, []any{string(s.Rule), "skipped", 0, s.Note})
	}
	return rows
}

func mapRows[T any](items []T, fn func(T) []any) [][]any {
	rows := make([][]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, fn(it))
	}
	return rows
}

func entryRow(p dataset.PayrollEntry) []any {
	return []any{cellDate(p.PaymentDate), p.EmployeeID, p.EmployeeName, cellAmount(p.Amount), p.BankAccount}
}

func findingRow(f rules.Finding) []any {
	return append(entryRow(f.PayrollEntry), f.Reason)
}

func cellDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func cellAmount(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
