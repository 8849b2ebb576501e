package audit

import "errors"

var (
	// ErrEmployeesRequired は従業員マスタが未供給または 0 行の場合に返却されます。
	ErrEmployeesRequired = errors.New("audit: employee master is required")
	// ErrPayrollRequired は給与支払いテーブルが未供給または 0 行の場合に返却されます。
	ErrPayrollRequired = errors.New("audit: payroll table is required")
	// ErrTableNotSupplied は Source にテーブルが設定されていない場合に返却されます。
	ErrTableNotSupplied = errors.New("audit: table not supplied")
	// ErrInvalidProfile はルールプロファイルが v1、v2 以外の場合に返却されます。
	ErrInvalidProfile = errors.New("audit: invalid rule profile")
	// ErrInvalidMinDays は最低出勤日数が 0 から 31 の範囲外の場合に返却されます。
	ErrInvalidMinDays = errors.New("audit: invalid minimum attendance days")
	// ErrInvalidThreshold はベンフォードの閾値が 0 から 100 の範囲外の場合に返却されます。
	ErrInvalidThreshold = errors.New("audit: invalid benford threshold")
	// ErrSourceNotAvailable は Service に Source が無い場合に返却されます。
	ErrSourceNotAvailable = errors.New("audit: table source is not configured")
)
