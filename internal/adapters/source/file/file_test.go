package file

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ogurasousui/payroll-forensics/internal/core/audit"
	"github.com/ogurasousui/payroll-forensics/internal/core/dataset"
)

func TestReadCSV_CommaAndBOM(t *testing.T) {
	t.Parallel()

	in := "\xEF\xBB\xBFcedula,nombre,monto\n1,Ana,\"1.500,00\"\n\n2,Luis\n"
	got, err := ReadCSV(strings.NewReader(in), "nomina.csv")
	require.NoError(t, err)

	require.Equal(t, "nomina.csv", got.Name)
	require.Equal(t, []string{"cedula", "nombre", "monto"}, got.Headers)
	require.Equal(t, [][]string{{"1", "Ana", "1.500,00"}, {"2", "Luis", ""}}, got.Rows)
}

func TestReadCSV_SemicolonFallback(t *testing.T) {
	t.Parallel()

	got, err := ReadCSV(strings.NewReader("cedula;monto\n1;980,10\n"), "x.csv")
	require.NoError(t, err)
	require.Equal(t, []string{"cedula", "monto"}, got.Headers)
	require.Equal(t, [][]string{{"1", "980,10"}}, got.Rows)
}

func TestReadCSV_Latin1(t *testing.T) {
	t.Parallel()

	got, err := ReadCSV(bytes.NewReader([]byte("c\xe9dula\n1\n")), "x.csv")
	require.NoError(t, err)
	require.Equal(t, []string{"cédula"}, got.Headers)
}

func TestReadCSV_Empty(t *testing.T) {
	t.Parallel()

	_, err := ReadCSV(strings.NewReader("\n\n"), "x.csv")
	require.ErrorIs(t, err, ErrNoHeader)
}

func TestReadXLSX(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"cedula", "fecha_pago", "monto"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"1", 45366, 1500.5}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	got, err := ReadXLSX(&buf, "nomina.xlsx")
	require.NoError(t, err)
	require.Equal(t, []string{"cedula", "fecha_pago", "monto"}, got.Headers)
	require.Equal(t, [][]string{{"1", "45366", "1500.5"}}, got.Rows)
}

func TestSource_Load(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "empleados.csv")
	require.NoError(t, os.WriteFile(path, []byte("cedula,nombre\n1,Ana\n"), 0o600))
	other := filepath.Join(dir, "asistencia.json")
	require.NoError(t, os.WriteFile(other, []byte("{}"), 0o600))

	src := New(map[dataset.Kind]string{
		dataset.KindEmployees:  path,
		dataset.KindPayroll:    "  ",
		dataset.KindAttendance: other,
	})

	got, err := src.Load(context.Background(), dataset.KindEmployees)
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)

	_, err = src.Load(context.Background(), dataset.KindPayroll)
	require.ErrorIs(t, err, audit.ErrTableNotSupplied)

	_, err = src.Load(context.Background(), dataset.KindAttendance)
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = New(map[dataset.Kind]string{dataset.KindPayroll: filepath.Join(dir, "missing.csv")}).Load(context.Background(), dataset.KindPayroll)
	require.ErrorIs(t, err, os.ErrNotExist)
}
