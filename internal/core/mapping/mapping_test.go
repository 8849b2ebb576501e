package mapping

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ogurasousui/payroll-forensics/internal/core/dataset"
	"github.com/stretchr/testify/require"
)

func TestSuggest_PrefersSynonymOrder(t *testing.T) {
	t.Parallel()

	headers := []string{"Fecha", "Cédula", "Nombre", "Neto Pagar", "Valor", "IBAN", "Fecha_Pago"}

	got, err := Suggest(dataset.KindPayroll, headers)
	require.NoError(t, err)

	want := Mapping{
		FieldPaymentDate:  "fecha_pago",
		FieldEmployeeID:   "cedula",
		FieldEmployeeName: "nombre",
		FieldAmount:       "valor",
		FieldBankAccount:  "iban",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected mapping (-want +got):\n%s", diff)
	}
}

func TestSuggest_UnknownKind(t *testing.T) {
	t.Parallel()

	_, err := Suggest(dataset.Kind("salaries"), []string{"a"})
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestMapping_Override(t *testing.T) {
	t.Parallel()

	headers := []string{"cedula", "nombre", "salario", "neto"}
	suggested, err := Suggest(dataset.KindPayroll, headers)
	require.NoError(t, err)
	require.Equal(t, "salario", suggested[FieldAmount])

	overridden, err := suggested.Override(dataset.KindPayroll, headers, map[string]string{
		FieldAmount:       "Neto",
		FieldEmployeeName: NoColumn,
	})
	require.NoError(t, err)
	require.Equal(t, "neto", overridden[FieldAmount])
	_, mapped := overridden[FieldEmployeeName]
	require.False(t, mapped)
	require.Equal(t, "salario", suggested[FieldAmount], "override must not mutate the receiver")

	_, err = suggested.Override(dataset.KindPayroll, headers, map[string]string{"salary": "neto"})
	require.True(t, errors.Is(err, ErrUnknownField))

	_, err = suggested.Override(dataset.KindPayroll, headers, map[string]string{FieldAmount: "bruto"})
	require.True(t, errors.Is(err, ErrColumnNotFound))
}

func TestApply_KeepsSchemaForUnmappedAndEmptyTables(t *testing.T) {
	t.Parallel()

	raw := &RawTable{Headers: []string{"CTA"}, Rows: nil}
	m, err := Suggest(dataset.KindRelatedParties, raw.Headers)
	require.NoError(t, err)

	got, err := Apply(raw, dataset.KindRelatedParties, m)
	require.NoError(t, err)
	require.Equal(t, []string{FieldBankAccount, FieldHolderName, FieldHolderID, FieldRelationship}, got.Fields)
	require.Empty(t, got.Rows)

	_, err = Apply(nil, dataset.KindRelatedParties, m)
	require.ErrorIs(t, err, ErrMissingRawTable)
}

func TestApply_ShortRowsYieldEmptyCells(t *testing.T) {
	t.Parallel()

	raw := &RawTable{
		Headers: []string{"cedula", "fecha"},
		Rows:    [][]string{{"100"}, {"101", "2024-01-02"}},
	}
	m, err := Suggest(dataset.KindAttendance, raw.Headers)
	require.NoError(t, err)

	got, err := Apply(raw, dataset.KindAttendance, m)
	require.NoError(t, err)
	require.Equal(t, [][]string{{"100", ""}, {"101", "2024-01-02"}}, got.Rows)
}

func TestBuildTables(t *testing.T) {
	t.Parallel()

	raws := map[dataset.Kind]*RawTable{
		dataset.KindEmployees: {
			Headers: []string{"Cédula", "Nombre", "Fecha Ingreso", "Fecha Egreso"},
			Rows: [][]string{
				{" 100 ", "Ana", "2020-01-01", ""},
				{"101", "Luis", "2021-05-01", "2024-02-29"},
			},
		},
		dataset.KindPayroll: {
			Headers: []string{"fecha_pago", "cedula", "nombre", "monto", "cuenta_bancaria"},
			Rows: [][]string{
				{"2024-03-31", "101", "Luis", "1.250,50", " 0011 "},
				{"bad-date", "999", "Nadie", "n/a", "0099"},
			},
		},
		dataset.KindContracts: {
			Headers: []string{"cedula", "numero_contrato", "estado_contrato", "fecha_inicio", "fecha_fin"},
			Rows:    [][]string{{"100", "C-1", " vigente ", "2020-01-01", ""}},
		},
		dataset.KindAuthorizedAccounts: {
			Headers: []string{"cuenta"},
		},
	}

	tables, warnings, err := BuildTables(raws, map[dataset.Kind]map[string]string{
		dataset.KindPayroll: {FieldEmployeeName: NoColumn},
	})
	require.NoError(t, err)

	require.True(t, tables.Has(dataset.KindEmployees))
	require.True(t, tables.Has(dataset.KindAuthorizedAccounts))
	require.Empty(t, tables.AuthorizedAccounts)
	require.False(t, tables.Has(dataset.KindAttendance))

	require.Equal(t, "100", tables.Employees[0].ID)
	require.Nil(t, tables.Employees[0].TerminationDate)
	require.True(t, tables.Employees[1].TerminationDate.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))

	require.Equal(t, "1250.5", tables.Payroll[0].Amount.String())
	require.Equal(t, "0011", tables.Payroll[0].BankAccount)
	require.Equal(t, "", tables.Payroll[0].EmployeeName)
	require.Nil(t, tables.Payroll[1].PaymentDate)
	require.True(t, tables.Payroll[1].Amount.IsZero())

	require.Equal(t, dataset.ActiveContractStatus, tables.Contracts[0].Status)
	require.Nil(t, tables.Contracts[0].EndDate)

	require.Len(t, warnings, 1)
	require.Equal(t, dataset.KindPayroll, warnings[0].Kind)
	require.Equal(t, FieldEmployeeName, warnings[0].Field)
}

func TestBuildTables_OverrideError(t *testing.T) {
	t.Parallel()

	raws := map[dataset.Kind]*RawTable{
		dataset.KindPayroll: {Headers: []string{"monto"}},
	}
	_, _, err := BuildTables(raws, map[dataset.Kind]map[string]string{
		dataset.KindPayroll: {FieldAmount: "importe"},
	})
	require.ErrorIs(t, err, ErrColumnNotFound)
}
