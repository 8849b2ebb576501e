package mapping

import (
	"fmt"

	"github.com/ogurasousui/payroll-forensics/internal/core/dataset"
	"github.com/ogurasousui/payroll-forensics/internal/core/normalize"
)

// Warning は処理を止めない対応付け上の問題です。
type Warning struct {
	Kind    dataset.Kind
	Field   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s.%s: %s", w.Kind, w.Field, w.Message)
}

// BuildTables は供給された生テーブルを正規化済みの dataset.Tables に変換します。
// raws に含まれない種別は未供給として扱います。
func BuildTables(raws map[dataset.Kind]*RawTable, overrides map[dataset.Kind]map[string]string) (dataset.Tables, []Warning, error) {
	var (
		tables   dataset.Tables
		warnings []Warning
	)

	for _, kind := range dataset.Kinds() {
		raw, ok := raws[kind]
		if !ok || raw == nil {
			continue
		}

		m, err := Suggest(kind, raw.Headers)
		if err != nil {
			return dataset.Tables{}, nil, err
		}
		if manual := overrides[kind]; len(manual) > 0 {
			m, err = m.Override(kind, raw.Headers, manual)
			if err != nil {
				return dataset.Tables{}, nil, err
			}
		}
		for _, field := range m.Unmapped(kind) {
			warnings = append(warnings, Warning{Kind: kind, Field: field, Message: "no matching column; values left empty"})
		}

		canonical, err := Apply(raw, kind, m)
		if err != nil {
			return dataset.Tables{}, nil, fmt.Errorf("%s: %w", kind, err)
		}

		switch kind {
		case dataset.KindEmployees:
			tables.Employees = Employees(canonical)
		case dataset.KindPayroll:
			tables.Payroll = Payroll(canonical)
		case dataset.KindAttendance:
			tables.Attendance = Attendance(canonical)
		case dataset.KindAuthorizedAccounts:
			tables.AuthorizedAccounts = AuthorizedAccounts(canonical)
		case dataset.KindContracts:
			tables.Contracts = Contracts(canonical)
		case dataset.KindRelatedParties:
			tables.RelatedParties = RelatedParties(canonical)
		}
		tables.MarkSupplied(kind)
	}

	return tables, warnings, nil
}

// Employees は従業員マスタの行を生成します。
func Employees(c Canonical) []dataset.Employee {
	out := make([]dataset.Employee, len(c.Rows))
	for i := range c.Rows {
		out[i] = dataset.Employee{
			ID:              normalize.String(c.Value(i, FieldID)),
			Name:            normalize.String(c.Value(i, FieldName)),
			HireDate:        normalize.Date(c.Value(i, FieldHireDate)),
			TerminationDate: normalize.Date(c.Value(i, FieldTerminationDate)),
		}
	}
	return out
}

// Payroll は給与支払いの行を生成します。
func Payroll(c Canonical) []dataset.PayrollEntry {
	out := make([]dataset.PayrollEntry, len(c.Rows))
	for i := range c.Rows {
		out[i] = dataset.PayrollEntry{
			PaymentDate:  normalize.Date(c.Value(i, FieldPaymentDate)),
			EmployeeID:   normalize.String(c.Value(i, FieldEmployeeID)),
			EmployeeName: normalize.String(c.Value(i, FieldEmployeeName)),
			Amount:       normalize.Amount(c.Value(i, FieldAmount)),
			BankAccount:  normalize.String(c.Value(i, FieldBankAccount)),
		}
	}
	return out
}

// Attendance は出勤記録の行を生成します。
func Attendance(c Canonical) []dataset.AttendanceMark {
	out := make([]dataset.AttendanceMark, len(c.Rows))
	for i := range c.Rows {
		out[i] = dataset.AttendanceMark{
			EmployeeID: normalize.String(c.Value(i, FieldEmployeeID)),
			Date:       normalize.Date(c.Value(i, FieldDate)),
		}
	}
	return out
}

// AuthorizedAccounts は許可口座の行を生成します。
func AuthorizedAccounts(c Canonical) []dataset.AuthorizedAccount {
	out := make([]dataset.AuthorizedAccount, len(c.Rows))
	for i := range c.Rows {
		out[i] = dataset.AuthorizedAccount{
			BankAccount: normalize.String(c.Value(i, FieldBankAccount)),
		}
	}
	return out
}

// Contracts は契約の行を生成します。
func Contracts(c Canonical) []dataset.Contract {
	out := make([]dataset.Contract, len(c.Rows))
	for i := range c.Rows {
		out[i] = dataset.Contract{
			EmployeeID:     normalize.String(c.Value(i, FieldEmployeeID)),
			ContractNumber: normalize.String(c.Value(i, FieldContractNumber)),
			Status:         normalize.Upper(c.Value(i, FieldStatus)),
			StartDate:      normalize.Date(c.Value(i, FieldStartDate)),
			EndDate:        normalize.Date(c.Value(i, FieldEndDate)),
		}
	}
	return out
}

// RelatedParties は関係者の行を生成します。
func RelatedParties(c Canonical) []dataset.RelatedParty {
	out := make([]dataset.RelatedParty, len(c.Rows))
	for i := range c.Rows {
		out[i] = dataset.RelatedParty{
			BankAccount:  normalize.String(c.Value(i, FieldBankAccount)),
			HolderName:   normalize.String(c.Value(i, FieldHolderName)),
			HolderID:     normalize.String(c.Value(i, FieldHolderID)),
			Relationship: normalize.Upper(c.Value(i, FieldRelationship)),
		}
	}
	return out
}
