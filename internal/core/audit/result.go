package audit

import (
	"time"

	"github.com/ogurasousui/payroll-forensics/internal/core/benford"
	"github.com/ogurasousui/payroll-forensics/internal/core/dataset"
	"github.com/ogurasousui/payroll-forensics/internal/core/mapping"
	"github.com/ogurasousui/payroll-forensics/internal/core/rules"
)

// RuleID はルールの識別子です。
type RuleID string

const (
	RuleGhostByAbsence         RuleID = "ghost_by_absence"
	RulePaidAfterTermination   RuleID = "paid_after_termination"
	RuleContractInvalid        RuleID = "contract_invalid"
	RuleInsufficientAttendance RuleID = "insufficient_attendance"
	RuleConsolidatedGhosts     RuleID = "consolidated_ghosts"
	RuleRelatedPartyTrace      RuleID = "related_party_trace"
	RuleSharedAccounts         RuleID = "shared_accounts"
	RuleAccountHopping         RuleID = "account_hopping"
	RuleUnauthorizedAccounts   RuleID = "unauthorized_accounts"
	RuleBenford                RuleID = "benford"
)

// RuleStatus はルールの実行状況です。Ran が false のとき Note に理由が入ります。
type RuleStatus struct {
	Rule     RuleID
	Ran      bool
	Findings int
	Note     string
}

// Result は 1 回の監査の結果です。実行されなかったルールの結果は nil のままです。
type Result struct {
	RunID       string
	GeneratedAt time.Time
	Params      Params
	Tables      dataset.Tables
	Warnings    []mapping.Warning
	Statuses    []RuleStatus

	GhostByAbsence         []rules.Finding
	PaidAfterTermination   []rules.PostTerminationFinding
	ContractInvalid        []rules.ContractFinding
	InsufficientAttendance []rules.AttendanceFinding
	ConsolidatedGhosts     []rules.Finding
	RelatedParties         []rules.RelatedPartyFinding
	SharedAccounts         []rules.SharedAccount
	SharedAccountPayments  []dataset.PayrollEntry
	AccountHopping         []rules.AccountHop
	UnauthorizedAccounts   []rules.Finding
	Benford                benford.Analysis
	BenfordOutliers        []benford.DigitRow
}

// Status はルールの実行状況を返します。
func (r *Result) Status(id RuleID) (RuleStatus, bool) {
	for _, s := range r.Statuses {
		if s.Rule == id {
			return s, true
		}
	}
	return RuleStatus{}, false
}

// Ran はルールが実行されたかどうかを返します。
func (r *Result) Ran(id RuleID) bool {
	s, ok := r.Status(id)
	return ok && s.Ran
}

func (r *Result) ran(id RuleID, findings int) {
	r.Statuses = append(r.Statuses, RuleStatus{Rule: id, Ran: true, Findings: findings})
}

func (r *Result) skipped(id RuleID, note string) {
	r.Statuses = append(r.Statuses, RuleStatus{Rule: id, Note: note})
}
