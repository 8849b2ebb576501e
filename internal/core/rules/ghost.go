package rules

import (
	"time"

	"github.com/ogurasousui/payroll-forensics/internal/core/dataset"
)

// GhostByAbsence は従業員マスタに存在しない ID への支払いを検出します。
func GhostByAbsence(payroll []dataset.PayrollEntry, employees []dataset.Employee) []Finding {
	known := make(map[string]struct{}, len(employees))
	for _, e := range employees {
		if e.ID != "" {
			known[e.ID] = struct{}{}
		}
	}

	out := make([]Finding, 0)
	for _, p := range payroll {
		if _, ok := known[p.EmployeeID]; ok {
			continue
		}
		out = append(out, Finding{PayrollEntry: p, Reason: ReasonNotInMaster})
	}
	sortFindings(out)
	return out
}

// PaidAfterTermination は退職日より後の支払いを検出します。
// マスタに存在しない ID は GhostByAbsence の対象であり、ここでは評価しません。
// そのため 1 つの支払い行が両方のルールで検出されることはありません。
func PaidAfterTermination(payroll []dataset.PayrollEntry, employees []dataset.Employee) []PostTerminationFinding {
	master := firstByID(employees)

	out := make([]PostTerminationFinding, 0)
	for _, p := range payroll {
		emp, ok := master[p.EmployeeID]
		if !ok || emp.TerminationDate == nil || p.PaymentDate == nil {
			continue
		}
		if !p.PaymentDate.After(*emp.TerminationDate) {
			continue
		}
		out = append(out, PostTerminationFinding{
			Finding:         Finding{PayrollEntry: p, Reason: ReasonPaidAfterTermination},
			MasterName:      emp.Name,
			TerminationDate: *emp.TerminationDate,
		})
	}
	sortFindings(out)
	return out
}

// ContractInvalid は有効な契約で裏付けられない支払いを検出します。
// 従業員のいずれかの契約が有効かつ支払日を含む場合、その支払いは有効です。
// 理由は「契約なし」「契約が無効」「契約期間外」の順で優先されます。
func ContractInvalid(payroll []dataset.PayrollEntry, contracts []dataset.Contract) []ContractFinding {
	byEmployee := make(map[string][]dataset.Contract)
	for _, c := range contracts {
		if c.EmployeeID == "" {
			continue
		}
		byEmployee[c.EmployeeID] = append(byEmployee[c.EmployeeID], c)
	}

	out := make([]ContractFinding, 0)
	for _, p := range payroll {
		candidates := byEmployee[p.EmployeeID]
		if coveredByActiveContract(candidates, p.PaymentDate) {
			continue
		}
		reason, ref := classifyContract(candidates)
		out = append(out, ContractFinding{
			Finding:        Finding{PayrollEntry: p, Reason: reason},
			ContractNumber: ref.ContractNumber,
			ContractStatus: ref.Status,
			StartDate:      ref.StartDate,
			EndDate:        ref.EndDate,
		})
	}
	sortFindings(out)
	return out
}

func coveredByActiveContract(contracts []dataset.Contract, paymentDate *time.Time) bool {
	for _, c := range contracts {
		if c.IsActive() && c.Covers(paymentDate) {
			return true
		}
	}
	return false
}

// classifyContract は無効な支払いの理由と、出力に添える代表契約を返します。
func classifyContract(contracts []dataset.Contract) (string, dataset.Contract) {
	var (
		numbered []dataset.Contract
		active   []dataset.Contract
	)
	for _, c := range contracts {
		if c.ContractNumber == "" {
			continue
		}
		numbered = append(numbered, c)
		if c.IsActive() {
			active = append(active, c)
		}
	}

	switch {
	case len(numbered) == 0:
		var ref dataset.Contract
		if len(contracts) > 0 {
			ref = contracts[0]
		}
		return ReasonNoFormalContract, ref
	case len(active) == 0:
		return ReasonContractNotActive, numbered[0]
	default:
		return ReasonOutsideContractRange, active[0]
	}
}

type attendanceKey struct {
	employeeID string
	period     string
}

// InsufficientAttendance は支払月の出勤日数が minDays 未満の支払いを検出します。
// 同じ日の重複打刻は 1 日として数え、打刻の無い月は 0 日です。minDays が 0 以下なら何も検出しません。
func InsufficientAttendance(payroll []dataset.PayrollEntry, attendance []dataset.AttendanceMark, minDays int) []AttendanceFinding {
	out := make([]AttendanceFinding, 0)
	if minDays <= 0 {
		return out
	}

	days := make(map[attendanceKey]map[time.Time]struct{})
	for _, a := range attendance {
		if a.Date == nil {
			continue
		}
		key := attendanceKey{employeeID: a.EmployeeID, period: Period(a.Date)}
		if days[key] == nil {
			days[key] = make(map[time.Time]struct{})
		}
		days[key][*a.Date] = struct{}{}
	}

	reason := InsufficientAttendanceReason(minDays)
	for _, p := range payroll {
		period := Period(p.PaymentDate)
		present := 0
		if period != "" {
			present = len(days[attendanceKey{employeeID: p.EmployeeID, period: period}])
		}
		if present >= minDays {
			continue
		}
		out = append(out, AttendanceFinding{
			Finding:     Finding{PayrollEntry: p, Reason: reason},
			Period:      period,
			DaysPresent: present,
		})
	}
	sortFindings(out)
	return out
}

// Period は日付の暦月を YYYY-MM 形式で返します。nil の場合は空文字列です。
func Period(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01")
}

type findingKey struct {
	paymentDate  time.Time
	hasDate      bool
	employeeID   string
	employeeName string
	amount       string
	bankAccount  string
	reason       string
}

func keyOf(f Finding) findingKey {
	k := findingKey{
		employeeID:   f.EmployeeID,
		employeeName: f.EmployeeName,
		amount:       f.Amount.String(),
		bankAccount:  f.BankAccount,
		reason:       f.Reason,
	}
	if f.PaymentDate != nil {
		k.paymentDate = *f.PaymentDate
		k.hasDate = true
	}
	return k
}

// ConsolidateGhosts は各ルールの検出結果を共通項目で結合し、完全一致の重複を除去します。
// 実行されなかったルールは呼び出し側で除外してください。
func ConsolidateGhosts(groups ...[]Finding) []Finding {
	seen := make(map[findingKey]struct{})
	out := make([]Finding, 0)
	for _, group := range groups {
		for _, f := range group {
			k := keyOf(f)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, f)
		}
	}
	sortFindings(out)
	return out
}

// TraceRelatedParties は幽霊社員への支払い先口座を関係者の申告と突き合わせます。
// 名義人が特定できた行だけを返し、元の検出結果は絞り込みません。
func TraceRelatedParties(ghosts []Finding, parties []dataset.RelatedParty) []RelatedPartyFinding {
	byAccount := make(map[string][]dataset.RelatedParty)
	for _, rp := range parties {
		if rp.BankAccount == "" || !rp.HasHolder() {
			continue
		}
		byAccount[rp.BankAccount] = append(byAccount[rp.BankAccount], rp)
	}

	out := make([]RelatedPartyFinding, 0)
	for _, g := range ghosts {
		for _, rp := range byAccount[g.BankAccount] {
			out = append(out, RelatedPartyFinding{
				Finding:      g,
				HolderName:   rp.HolderName,
				HolderID:     rp.HolderID,
				Relationship: rp.Relationship,
			})
		}
	}
	return out
}

func firstByID(employees []dataset.Employee) map[string]dataset.Employee {
	out := make(map[string]dataset.Employee, len(employees))
	for _, e := range employees {
		if e.ID == "" {
			continue
		}
		if _, ok := out[e.ID]; !ok {
			out[e.ID] = e
		}
	}
	return out
}
