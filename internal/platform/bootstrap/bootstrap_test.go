package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ogurasousui/payroll-forensics/internal/core/audit"
	"github.com/ogurasousui/payroll-forensics/internal/core/dataset"
	"github.com/ogurasousui/payroll-forensics/internal/platform/config"
)

func TestNew_FileDriverWithOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	employees := filepath.Join(dir, "empleados.csv")
	payroll := filepath.Join(dir, "nomina.csv")
	require.NoError(t, os.WriteFile(employees, []byte("cedula,nombre\n1,Ana\n"), 0o600))
	require.NoError(t, os.WriteFile(payroll, []byte("fecha_pago;cedula;monto;cuenta\n31/01/2024;1;100;A\n31/01/2024;5;200;A\n"), 0o600))

	cfg := config.Default()
	cfg.Source.Files = map[string]string{"employees": filepath.Join(dir, "missing.csv")}

	app, err := New(context.Background(), cfg, map[dataset.Kind]string{
		dataset.KindEmployees: employees,
		dataset.KindPayroll:   payroll,
	}, nil)
	require.NoError(t, err)
	defer app.Close()

	res, err := app.Service.Run(context.Background(), audit.RunInput{Params: audit.DefaultParams()})
	require.NoError(t, err)
	require.Len(t, res.GhostByAbsence, 1)
	require.Equal(t, "5", res.GhostByAbsence[0].EmployeeID)
	require.Len(t, res.SharedAccounts, 1)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Source.Driver = "s3"
	_, err := New(context.Background(), cfg, nil, nil)
	require.Error(t, err)
}
