package rules

import (
	"sort"

	"github.com/ogurasousui/payroll-forensics/internal/core/dataset"
	"github.com/shopspring/decimal"
)

// SharedAccounts は複数の従業員 ID が支払いを受けている口座を検出します。
// 要約は従業員数の降順、合計額の降順、口座番号の昇順で並びます。
// 明細は入力順のままです。口座番号が空の行は集計しません。
func SharedAccounts(payroll []dataset.PayrollEntry) ([]SharedAccount, []dataset.PayrollEntry) {
	employeesByAccount := make(map[string]map[string]struct{})
	for _, p := range payroll {
		if p.BankAccount == "" {
			continue
		}
		if employeesByAccount[p.BankAccount] == nil {
			employeesByAccount[p.BankAccount] = make(map[string]struct{})
		}
		employeesByAccount[p.BankAccount][p.EmployeeID] = struct{}{}
	}

	totals := make(map[string]decimal.Decimal)
	detail := make([]dataset.PayrollEntry, 0)
	for _, p := range payroll {
		if len(employeesByAccount[p.BankAccount]) <= 1 {
			continue
		}
		detail = append(detail, p)
		totals[p.BankAccount] = totals[p.BankAccount].Add(p.Amount)
	}

	summary := make([]SharedAccount, 0, len(totals))
	for account, total := range totals {
		summary = append(summary, SharedAccount{
			BankAccount:  account,
			NumEmployees: len(employeesByAccount[account]),
			TotalAmount:  total,
		})
	}
	sort.Slice(summary, func(i, j int) bool {
		a, b := summary[i], summary[j]
		if a.NumEmployees != b.NumEmployees {
			return a.NumEmployees > b.NumEmployees
		}
		if cmp := a.TotalAmount.Cmp(b.TotalAmount); cmp != 0 {
			return cmp > 0
		}
		return a.BankAccount < b.BankAccount
	})

	return summary, detail
}

// AccountHopping は複数の口座で支払いを受けている従業員を検出します。
// 口座数の降順、従業員 ID の昇順で並びます。
func AccountHopping(payroll []dataset.PayrollEntry) []AccountHop {
	accountsByEmployee := make(map[string]map[string]struct{})
	for _, p := range payroll {
		if p.BankAccount == "" {
			continue
		}
		if accountsByEmployee[p.EmployeeID] == nil {
			accountsByEmployee[p.EmployeeID] = make(map[string]struct{})
		}
		accountsByEmployee[p.EmployeeID][p.BankAccount] = struct{}{}
	}

	out := make([]AccountHop, 0)
	for id, accounts := range accountsByEmployee {
		if len(accounts) > 1 {
			out = append(out, AccountHop{EmployeeID: id, NumAccounts: len(accounts)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NumAccounts != out[j].NumAccounts {
			return out[i].NumAccounts > out[j].NumAccounts
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out
}

// UnauthorizedAccounts は許可口座一覧に含まれない口座への支払いを検出します。
// 許可口座一覧が空の場合は何も検出しません。「全口座が未許可」とは解釈しません。
func UnauthorizedAccounts(payroll []dataset.PayrollEntry, authorized []dataset.AuthorizedAccount) []Finding {
	out := make([]Finding, 0)
	if len(authorized) == 0 {
		return out
	}

	allowed := make(map[string]struct{}, len(authorized))
	for _, a := range authorized {
		allowed[a.BankAccount] = struct{}{}
	}

	for _, p := range payroll {
		if _, ok := allowed[p.BankAccount]; ok {
			continue
		}
		out = append(out, Finding{PayrollEntry: p, Reason: ReasonUnauthorizedAccount})
	}
	sortFindings(out)
	return out
}
