package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/ogurasousui/payroll-forensics/internal/core/audit"
	"github.com/ogurasousui/payroll-forensics/internal/core/dataset"
	"github.com/ogurasousui/payroll-forensics/internal/core/normalize"
	dbpostgres "github.com/ogurasousui/payroll-forensics/internal/platform/db/postgres"
)

func TestStagingSource_LoadWithinReadOnlyTx(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	src, err := NewStagingSource(mock, dbpostgres.NewTransactionManager(mock), map[dataset.Kind]string{
		dataset.KindPayroll: "staging.nomina",
	})
	if err != nil {
		t.Fatalf("NewStagingSource returned error: %v", err)
	}

	paid := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"fecha_pago", "cedula", "monto", "cuenta"}).
		AddRow(paid, "1", "1500.50", nil).
		AddRow(nil, int64(2), 980.1, []byte("ACC-2"))

	mock.ExpectBeginTx(dbpostgres.ReadOnlyOptions)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "staging"."nomina"`)).WillReturnRows(rows)
	mock.ExpectCommit()

	got, err := src.Load(context.Background(), dataset.KindPayroll)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if got.Name != "staging.nomina" {
		t.Fatalf("unexpected name %q", got.Name)
	}
	if len(got.Headers) != 4 || got.Headers[0] != "fecha_pago" {
		t.Fatalf("unexpected headers %v", got.Headers)
	}
	want := [][]string{
		{"2024-01-31", "1", "1500.50", ""},
		{"", "2", "980.1", "ACC-2"},
	}
	if len(got.Rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(got.Rows))
	}
	for i := range want {
		for j := range want[i] {
			if got.Rows[i][j] != want[i][j] {
				t.Fatalf("row %d col %d: expected %q, got %q", i, j, want[i][j], got.Rows[i][j])
			}
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCellText_Numbers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want string
	}{
		{float64(1500000), "1500000"},
		{float64(1234.5), "1234.5"},
		{float64(0.000012), "0.000012"},
		{float32(2.5), "2.5"},
		{int64(42), "42"},
	}
	for _, tc := range cases {
		got := cellText(tc.in)
		if got != tc.want {
			t.Fatalf("cellText(%v): expected %q, got %q", tc.in, tc.want, got)
		}
		if amount := normalize.Amount(got).String(); amount != tc.want {
			t.Fatalf("Amount(%q): expected %q, got %q", got, tc.want, amount)
		}
	}
}

func TestStagingSource_NotConfigured(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	src, err := NewStagingSource(mock, nil, map[dataset.Kind]string{dataset.KindContracts: " "})
	if err != nil {
		t.Fatalf("NewStagingSource returned error: %v", err)
	}

	if _, err := src.Load(context.Background(), dataset.KindContracts); !errors.Is(err, audit.ErrTableNotSupplied) {
		t.Fatalf("expected ErrTableNotSupplied, got %v", err)
	}
}

func TestStagingSource_MissingRelation(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	src, err := NewStagingSource(mock, nil, map[dataset.Kind]string{dataset.KindEmployees: "empleados"})
	if err != nil {
		t.Fatalf("NewStagingSource returned error: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "empleados"`)).
		WillReturnError(&pgconn.PgError{Code: undefinedTableCode, Message: `relation "empleados" does not exist`})

	if _, err := src.Load(context.Background(), dataset.KindEmployees); !errors.Is(err, ErrRelationNotFound) {
		t.Fatalf("expected ErrRelationNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNewStagingSource_InvalidName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"a.b.c", "schema.", ".table"} {
		_, err := NewStagingSource(nil, nil, map[dataset.Kind]string{dataset.KindPayroll: name})
		if !errors.Is(err, ErrInvalidTableName) {
			t.Fatalf("%q: expected ErrInvalidTableName, got %v", name, err)
		}
	}
}

func TestTranslatePgError(t *testing.T) {
	t.Parallel()

	if !errors.Is(translatePgError(&pgconn.PgError{Code: undefinedTableCode}), ErrRelationNotFound) {
		t.Fatalf("expected relation not found mapping")
	}

	otherErr := errors.New("random")
	if translatePgError(otherErr) != otherErr {
		t.Fatalf("unexpected translation for generic error")
	}
}
