package audit

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ogurasousui/payroll-forensics/internal/core/benford"
	"github.com/ogurasousui/payroll-forensics/internal/core/dataset"
	"github.com/ogurasousui/payroll-forensics/internal/core/rules"
)

const (
	noteProfileV1   = "not part of profile v1"
	noteProfileV2   = "not part of profile v2"
	noteDisabled    = "disabled"
	noteMinDaysZero = "min_attendance_days is 0"
)

func noteNotSupplied(kind dataset.Kind) string {
	return fmt.Sprintf("%s not supplied", kind)
}

// Evaluate は正規化済みテーブルに対してプロファイルのルールを順に実行します。
// 従業員マスタと給与台帳は供給され、かつ 1 行以上含む必要があります。
func Evaluate(tables dataset.Tables, params Params) (*Result, error) {
	params, err := params.Validate()
	if err != nil {
		return nil, err
	}
	if !tables.Has(dataset.KindEmployees) || len(tables.Employees) == 0 {
		return nil, ErrEmployeesRequired
	}
	if !tables.Has(dataset.KindPayroll) || len(tables.Payroll) == 0 {
		return nil, ErrPayrollRequired
	}

	res := &Result{Params: params, Tables: tables}

	res.GhostByAbsence = rules.GhostByAbsence(tables.Payroll, tables.Employees)
	res.ran(RuleGhostByAbsence, len(res.GhostByAbsence))

	res.PaidAfterTermination = rules.PaidAfterTermination(tables.Payroll, tables.Employees)
	res.ran(RulePaidAfterTermination, len(res.PaidAfterTermination))

	switch {
	case params.Profile != ProfileV2:
		res.skipped(RuleContractInvalid, noteProfileV1)
	case !tables.Has(dataset.KindContracts):
		res.skipped(RuleContractInvalid, noteNotSupplied(dataset.KindContracts))
	default:
		res.ContractInvalid = rules.ContractInvalid(tables.Payroll, tables.Contracts)
		res.ran(RuleContractInvalid, len(res.ContractInvalid))
	}

	switch {
	case !tables.Has(dataset.KindAttendance):
		res.skipped(RuleInsufficientAttendance, noteNotSupplied(dataset.KindAttendance))
	case params.MinAttendanceDays <= 0:
		res.skipped(RuleInsufficientAttendance, noteMinDaysZero)
	default:
		res.InsufficientAttendance = rules.InsufficientAttendance(tables.Payroll, tables.Attendance, params.MinAttendanceDays)
		res.ran(RuleInsufficientAttendance, len(res.InsufficientAttendance))
	}

	if params.Profile == ProfileV2 {
		evaluateGhostTrace(res, tables)
	} else {
		res.skipped(RuleConsolidatedGhosts, noteProfileV1)
		res.skipped(RuleRelatedPartyTrace, noteProfileV1)
	}

	res.SharedAccounts, res.SharedAccountPayments = rules.SharedAccounts(tables.Payroll)
	res.ran(RuleSharedAccounts, len(res.SharedAccounts))

	if params.Profile == ProfileV1 {
		res.AccountHopping = rules.AccountHopping(tables.Payroll)
		res.ran(RuleAccountHopping, len(res.AccountHopping))
	} else {
		res.skipped(RuleAccountHopping, noteProfileV2)
	}

	if tables.Has(dataset.KindAuthorizedAccounts) {
		res.UnauthorizedAccounts = rules.UnauthorizedAccounts(tables.Payroll, tables.AuthorizedAccounts)
		res.ran(RuleUnauthorizedAccounts, len(res.UnauthorizedAccounts))
	} else {
		res.skipped(RuleUnauthorizedAccounts, noteNotSupplied(dataset.KindAuthorizedAccounts))
	}

	if params.BenfordEnabled {
		res.Benford = benford.Analyze(amounts(tables.Payroll))
		res.BenfordOutliers = res.Benford.Outliers(params.BenfordThresholdPct)
		res.ran(RuleBenford, len(res.BenfordOutliers))
	} else {
		res.skipped(RuleBenford, noteDisabled)
	}

	return res, nil
}

func evaluateGhostTrace(res *Result, tables dataset.Tables) {
	groups := [][]rules.Finding{res.GhostByAbsence, rules.Bases(res.PaidAfterTermination)}
	if res.Ran(RuleContractInvalid) {
		groups = append(groups, rules.Bases(res.ContractInvalid))
	}
	if res.Ran(RuleInsufficientAttendance) {
		groups = append(groups, rules.Bases(res.InsufficientAttendance))
	}
	res.ConsolidatedGhosts = rules.ConsolidateGhosts(groups...)
	res.ran(RuleConsolidatedGhosts, len(res.ConsolidatedGhosts))

	if !tables.Has(dataset.KindRelatedParties) {
		res.skipped(RuleRelatedPartyTrace, noteNotSupplied(dataset.KindRelatedParties))
		return
	}
	res.RelatedParties = rules.TraceRelatedParties(res.ConsolidatedGhosts, tables.RelatedParties)
	res.ran(RuleRelatedPartyTrace, len(res.RelatedParties))
}

func amounts(payroll []dataset.PayrollEntry) []decimal.Decimal {
	out := make([]decimal.Decimal, len(payroll))
	for i, p := range payroll {
		out[i] = p.Amount
	}
	return out
}
