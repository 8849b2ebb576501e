// Package mapping は任意のヘッダーを持つ入力テーブルを論理フィールドへ対応付けます。
package mapping

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ogurasousui/payroll-forensics/internal/core/dataset"
	"github.com/ogurasousui/payroll-forensics/internal/core/normalize"
)

// NoColumn は手動指定で対応付けを解除するための値です。
const NoColumn = "(none)"

// RawTable は読み込んだままの表形式データです。
type RawTable struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Mapping は論理フィールドから正規化済みヘッダーへの対応です。
type Mapping map[string]string

// Canonical は論理フィールドのみを列に持つテーブルです。
type Canonical struct {
	Kind   dataset.Kind
	Fields []string
	Rows   [][]string
}

// Value は行 i の論理フィールドの値を返します。
func (c Canonical) Value(i int, field string) string {
	for j, f := range c.Fields {
		if f == field {
			return c.Rows[i][j]
		}
	}
	return ""
}

// NormalizedHeaders はヘッダーを正規化して返します。
func NormalizedHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = normalize.Header(h)
	}
	return out
}

// Suggest は候補名の一覧からヘッダーを推定します。
// 各論理フィールドについて、候補名の並び順で最初に見つかったヘッダーを採用します。
func Suggest(kind dataset.Kind, headers []string) (Mapping, error) {
	schema, err := SchemaFor(kind)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(headers))
	for _, h := range NormalizedHeaders(headers) {
		present[h] = true
	}

	m := make(Mapping, len(schema.Fields))
	for _, f := range schema.Fields {
		for _, candidate := range f.Synonyms {
			key := normalize.Header(candidate)
			if present[key] {
				m[f.Name] = key
				break
			}
		}
	}
	return m, nil
}

// Override は手動指定で推定結果を上書きした新しい Mapping を返します。
// 空文字列または NoColumn は対応付けの解除を意味します。
func (m Mapping) Override(kind dataset.Kind, headers []string, manual map[string]string) (Mapping, error) {
	schema, err := SchemaFor(kind)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(headers))
	for _, h := range NormalizedHeaders(headers) {
		present[h] = true
	}

	out := make(Mapping, len(m)+len(manual))
	for k, v := range m {
		out[k] = v
	}

	fields := make([]string, 0, len(manual))
	for field := range manual {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		column := manual[field]
		if !schema.has(field) {
			return nil, fmt.Errorf("%s.%s: %w", kind, field, ErrUnknownField)
		}
		if strings.TrimSpace(column) == "" || column == NoColumn {
			delete(out, field)
			continue
		}
		key := normalize.Header(column)
		if !present[key] {
			return nil, fmt.Errorf("%s.%s -> %q: %w", kind, field, column, ErrColumnNotFound)
		}
		out[field] = key
	}
	return out, nil
}

// Unmapped は対応付けされていない論理フィールドを定義順に返します。
func (m Mapping) Unmapped(kind dataset.Kind) []string {
	schema, err := SchemaFor(kind)
	if err != nil {
		return nil
	}
	var missing []string
	for _, f := range schema.Fields {
		if _, ok := m[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// Apply は Mapping に従って論理フィールドだけのテーブルを作成します。
// 対応付けのないフィールドは空セルになり、行数は入力と同じです。
func Apply(raw *RawTable, kind dataset.Kind, m Mapping) (Canonical, error) {
	if raw == nil {
		return Canonical{}, ErrMissingRawTable
	}
	schema, err := SchemaFor(kind)
	if err != nil {
		return Canonical{}, err
	}

	index := make(map[string]int, len(raw.Headers))
	for i, h := range NormalizedHeaders(raw.Headers) {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	fields := schema.FieldNames()
	source := make([]int, len(fields))
	for i, f := range fields {
		source[i] = -1
		if column, ok := m[f]; ok {
			if idx, ok := index[column]; ok {
				source[i] = idx
			}
		}
	}

	rows := make([][]string, len(raw.Rows))
	for r, rawRow := range raw.Rows {
		row := make([]string, len(fields))
		for i, idx := range source {
			if idx >= 0 && idx < len(rawRow) {
				row[i] = rawRow[idx]
			}
		}
		rows[r] = row
	}

	return Canonical{Kind: kind, Fields: fields, Rows: rows}, nil
}
