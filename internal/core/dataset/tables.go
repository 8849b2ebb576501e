package dataset

import "fmt"

// Kind は入力テーブルの種別です。
type Kind string

const (
	KindEmployees          Kind = "employees"
	KindPayroll            Kind = "payroll"
	KindAttendance         Kind = "attendance"
	KindAuthorizedAccounts Kind = "authorized_accounts"
	KindContracts          Kind = "contracts"
	KindRelatedParties     Kind = "related_parties"
)

// Kinds は全テーブル種別を読み込み順で返します。
func Kinds() []Kind {
	return []Kind{
		KindEmployees,
		KindPayroll,
		KindAttendance,
		KindAuthorizedAccounts,
		KindContracts,
		KindRelatedParties,
	}
}

// ParseKind は文字列からテーブル種別を解決します。
func ParseKind(raw string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == raw {
			return k, nil
		}
	}
	return "", fmt.Errorf("dataset: unknown table kind %q", raw)
}

// Required は必須テーブルかどうかを返します。
func (k Kind) Required() bool {
	return k == KindEmployees || k == KindPayroll
}

// Tables は 1 回の監査で扱う正規化済みテーブルの集合です。
// 供給されなかったテーブルと 0 行のテーブルは Has で区別します。
type Tables struct {
	Employees          []Employee
	Payroll            []PayrollEntry
	Attendance         []AttendanceMark
	AuthorizedAccounts []AuthorizedAccount
	Contracts          []Contract
	RelatedParties     []RelatedParty

	supplied map[Kind]bool
}

// MarkSupplied はテーブルが入力として供給されたことを記録します。
func (t *Tables) MarkSupplied(kinds ...Kind) {
	if t.supplied == nil {
		t.supplied = make(map[Kind]bool, len(kinds))
	}
	for _, k := range kinds {
		t.supplied[k] = true
	}
}

// Has はテーブルが供給されたかどうかを返します。
func (t Tables) Has(kind Kind) bool {
	return t.supplied[kind]
}

// Len は指定テーブルの行数を返します。
func (t Tables) Len(kind Kind) int {
	switch kind {
	case KindEmployees:
		return len(t.Employees)
	case KindPayroll:
		return len(t.Payroll)
	case KindAttendance:
		return len(t.Attendance)
	case KindAuthorizedAccounts:
		return len(t.AuthorizedAccounts)
	case KindContracts:
		return len(t.Contracts)
	case KindRelatedParties:
		return len(t.RelatedParties)
	default:
		return 0
	}
}
