// Package postgres は PostgreSQL のステージングテーブルから生テーブルを読み込みます。
package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/payroll-forensics/internal/core/audit"
	"github.com/ogurasousui/payroll-forensics/internal/core/dataset"
	"github.com/ogurasousui/payroll-forensics/internal/core/mapping"
	dbpostgres "github.com/ogurasousui/payroll-forensics/internal/platform/db/postgres"
)

const undefinedTableCode = "42P01"

var (
	// ErrRelationNotFound は設定されたステージングテーブルが存在しない場合に返却されます。
	ErrRelationNotFound = errors.New("postgres: staging table not found")
	// ErrInvalidTableName はテーブル名が "table" または "schema.table" でない場合に返却されます。
	ErrInvalidTableName = errors.New("postgres: invalid staging table name")
)

// ReadOnlyRunner は読み取り専用トランザクションで fn を実行します。
type ReadOnlyRunner interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
}

// StagingSource はステージングテーブルを SELECT * で読み込む audit.Source 実装です。
// テーブル名が設定されていない種別は未供給です。
type StagingSource struct {
	db     dbpostgres.Queryer
	tx     ReadOnlyRunner
	tables map[dataset.Kind]pgx.Identifier
}

var _ audit.Source = (*StagingSource)(nil)

// NewStagingSource は StagingSource を生成します。tables の値は "table" または "schema.table" です。
func NewStagingSource(db dbpostgres.Queryer, tx ReadOnlyRunner, tables map[dataset.Kind]string) (*StagingSource, error) {
	idents := make(map[dataset.Kind]pgx.Identifier, len(tables))
	for kind, name := range tables {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		ident, err := parseIdentifier(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		idents[kind] = ident
	}
	return &StagingSource{db: db, tx: tx, tables: idents}, nil
}

func parseIdentifier(name string) (pgx.Identifier, error) {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("%q: %w", name, ErrInvalidTableName)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("%q: %w", name, ErrInvalidTableName)
		}
	}
	return pgx.Identifier(parts), nil
}

// Load は種別に対応するステージングテーブルの全行をテキストとして読み込みます。
func (s *StagingSource) Load(ctx context.Context, kind dataset.Kind) (*mapping.RawTable, error) {
	ident, ok := s.tables[kind]
	if !ok {
		return nil, audit.ErrTableNotSupplied
	}

	var table *mapping.RawTable
	run := func(ctx context.Context) error {
		var err error
		table, err = s.selectAll(ctx, ident)
		return err
	}

	var err error
	if s.tx != nil {
		err = s.tx.WithinReadOnly(ctx, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return nil, translatePgError(err)
	}
	return table, nil
}

func (s *StagingSource) selectAll(ctx context.Context, ident pgx.Identifier) (*mapping.RawTable, error) {
	q := dbpostgres.QueryerFromContext(ctx, s.db)
	rows, err := q.Query(ctx, "SELECT * FROM "+ident.Sanitize())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = f.Name
	}

	table := &mapping.RawTable{Name: strings.Join(ident, "."), Headers: headers, Rows: make([][]string, 0)}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make([]string, len(headers))
		for i := range row {
			if i < len(values) {
				row[i] = cellText(values[i])
			}
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

// cellText はカラム値を正規化前のテキストに変換します。日付は ISO 形式です。
func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil || dv == nil {
			return ""
		}
		return cellText(dv)
	default:
		return fmt.Sprint(x)
	}
}

func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTableCode {
		return fmt.Errorf("%w: %s", ErrRelationNotFound, pgErr.Message)
	}
	return err
}
