package workbook

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ogurasousui/payroll-forensics/internal/core/report"
)

func TestWrite_RoundTrip(t *testing.T) {
	t.Parallel()

	paid := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	wb := report.Workbook{Sheets: []report.Sheet{
		{
			Name:   report.SheetGhostByAbsence,
			Header: []string{"payment_date", "employee_id", "amount", "reason"},
			Rows: [][]any{
				{paid, "9", 300.5, "not in employee master"},
				{nil, "7", 120.0, "not in employee master"},
			},
		},
		{
			Name:   report.SheetSummary,
			Header: []string{"rule", "status", "findings", "note"},
			Rows:   [][]any{{"ghost_by_absence", "ran", 2, ""}},
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, wb))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{report.SheetGhostByAbsence, report.SheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(report.SheetGhostByAbsence)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"payment_date", "employee_id", "amount", "reason"}, rows[0])
	require.Equal(t, "2024-01-31", rows[1][0])
	require.Equal(t, "9", rows[1][1])
	require.Equal(t, "300.5", rows[1][2])
	require.Equal(t, "", rows[2][0])

	summary, err := f.GetRows(report.SheetSummary)
	require.NoError(t, err)
	require.Equal(t, []string{"ghost_by_absence", "ran", "2"}, summary[1])
}

func TestWrite_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, report.Workbook{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{report.SheetSummary}, f.GetSheetList())
}
