// Package workbook は組み立てたレポートを .xlsx として書き出します。
package workbook

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ogurasousui/payroll-forensics/internal/core/report"
)

const (
	defaultSheet = "Sheet1"
	dateFormat   = "yyyy-mm-dd"
)

// Write はシートごとに先頭行をヘッダーとしてワークブックを書き出します。
// シートが 1 枚も無い場合は空の summary シートだけを持つブックになります。
func Write(w io.Writer, wb report.Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: ptr(dateFormat)})
	if err != nil {
		return fmt.Errorf("workbook: date style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("workbook: header style: %w", err)
	}

	sheets := wb.Sheets
	if len(sheets) == 0 {
		sheets = []report.Sheet{{Name: report.SheetSummary}}
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, s.Name); err != nil {
				return fmt.Errorf("workbook: rename sheet %s: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("workbook: new sheet %s: %w", s.Name, err)
		}
		if err := writeSheet(f, s, headerStyle, dateStyle); err != nil {
			return fmt.Errorf("workbook: sheet %s: %w", s.Name, err)
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("workbook: write: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s report.Sheet, headerStyle, dateStyle int) error {
	sw, err := f.NewStreamWriter(s.Name)
	if err != nil {
		return err
	}

	header := make([]any, len(s.Header))
	for i, h := range s.Header {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for r, row := range s.Rows {
		cells := make([]any, len(row))
		for c, v := range row {
			if t, ok := v.(time.Time); ok {
				cells[c] = excelize.Cell{StyleID: dateStyle, Value: t}
				continue
			}
			cells[c] = v
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return err
		}
	}
	return sw.Flush()
}

func ptr[T any](v T) *T {
	return &v
}
