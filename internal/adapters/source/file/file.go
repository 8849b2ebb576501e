// Package file は CSV と XLSX ファイルから生テーブルを読み込む Source 実装です。
package file

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ogurasousui/payroll-forensics/internal/core/audit"
	"github.com/ogurasousui/payroll-forensics/internal/core/dataset"
	"github.com/ogurasousui/payroll-forensics/internal/core/mapping"
)

var (
	// ErrUnsupportedFormat は拡張子が .csv、.txt、.xlsx、.xlsm 以外の場合に返却されます。
	ErrUnsupportedFormat = errors.New("file: unsupported file format")
	// ErrNoHeader はヘッダー行が見つからない場合に返却されます。
	ErrNoHeader = errors.New("file: no header row")
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Source は種別ごとのファイルパスから生テーブルを読み込みます。
// パスが空の種別は未供給です。
type Source struct {
	paths map[dataset.Kind]string
}

var _ audit.Source = (*Source)(nil)

// New は Source を生成します。
func New(paths map[dataset.Kind]string) *Source {
	clean := make(map[dataset.Kind]string, len(paths))
	for k, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			clean[k] = p
		}
	}
	return &Source{paths: clean}
}

// Load は種別に対応するファイルを読み込みます。
func (s *Source) Load(ctx context.Context, kind dataset.Kind) (*mapping.RawTable, error) {
	path, ok := s.paths[kind]
	if !ok {
		return nil, audit.ErrTableNotSupplied
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadFile(path)
}

// ReadFile は拡張子で形式を判定してファイルを読み込みます。
func ReadFile(path string) (*mapping.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("file: open %s: %w", path, err)
	}
	defer f.Close()

	name := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return ReadCSV(f, name)
	case ".xlsx", ".xlsm":
		return ReadXLSX(f, name)
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
}

// ReadCSV は CSV を読み込みます。BOM を除去し、UTF-8 以外は Latin-1 として解釈します。
// ヘッダーが 1 列にしかならない場合は区切り文字を ';' として読み直します。
func ReadCSV(r io.Reader, name string) (*mapping.RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("file: read %s: %w", name, err)
	}
	data, err = decode(data)
	if err != nil {
		return nil, fmt.Errorf("file: decode %s: %w", name, err)
	}

	records, err := readRecords(data, ',')
	if err != nil {
		return nil, fmt.Errorf("file: parse %s: %w", name, err)
	}
	if len(records) > 0 && len(records[0]) == 1 && bytes.IndexByte(data, ';') >= 0 {
		if alt, altErr := readRecords(data, ';'); altErr == nil && len(alt) > 0 && len(alt[0]) > 1 {
			records = alt
		}
	}
	return toTable(name, records)
}

func readRecords(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

func decode(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], nil
	case bytes.HasPrefix(data, bomUTF16LE):
		out, _, err := transform.Bytes(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder(), data)
		return out, err
	case bytes.HasPrefix(data, bomUTF16BE):
		out, _, err := transform.Bytes(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder(), data)
		return out, err
	case utf8.Valid(data):
		return data, nil
	default:
		out, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
		return out, err
	}
}

// ReadXLSX は先頭シートを読み込みます。日付セルは Excel のシリアル値のまま返します。
func ReadXLSX(r io.Reader, name string) (*mapping.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("file: open workbook %s: %w", name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoHeader)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("file: read sheet %s/%s: %w", name, sheets[0], err)
	}
	return toTable(name, rows)
}

func toTable(name string, records [][]string) (*mapping.RawTable, error) {
	for len(records) > 0 && blank(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoHeader)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row := make([]string, len(headers))
		copy(row, rec)
		rows = append(rows, row)
	}
	return &mapping.RawTable{Name: name, Headers: headers, Rows: rows}, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
