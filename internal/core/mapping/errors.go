package mapping

import "errors"

var (
	// ErrUnknownKind はテーブル種別が不明な場合に返却されます。
	ErrUnknownKind = errors.New("mapping: unknown table kind")
	// ErrUnknownField は手動指定の論理フィールドがスキーマに無い場合に返却されます。
	ErrUnknownField = errors.New("mapping: unknown logical field")
	// ErrColumnNotFound は手動指定の列がテーブルに無い場合に返却されます。
	ErrColumnNotFound = errors.New("mapping: column not found in table")
	// ErrMissingRawTable は生テーブルが nil の場合に返却されます。
	ErrMissingRawTable = errors.New("mapping: raw table is nil")
)
