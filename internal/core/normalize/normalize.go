// Package normalize は入力テーブルのヘッダーと値を正規化します。
// 値の変換は寛容で、解釈できない値はエラーにせず既定値へ置き換えます。
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	amountRe     = regexp.MustCompile(`([-+]?[0-9][0-9.,]*)([eE][-+]?[0-9]+)?`)
	nullTokens   = map[string]struct{}{
		"nan":  {},
		"none": {},
		"null": {},
		"nat":  {},
	}
	dateLayouts = []string{
		"2006-01-02",
		"2006/01/02",
		"02/01/2006",
		"02-01-2006",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"02/01/2006 15:04:05",
		"20060102",
		"2006-01",
		"200601",
		"2006",
	}
	excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
)

// Excel のシリアル値として扱う範囲です (1927-05-18 から 2173-10-14)。
// 4 桁や 6 桁の整数は年や年月として扱い、シリアル値とはみなしません。
const (
	minExcelSerial = 10000
	maxExcelSerial = 99999
)

// Header は列名を小文字化し、アクセント記号を除去し、空白をアンダースコアに置き換えます。
func Header(h string) string {
	s := strings.ToLower(strings.TrimSpace(h))
	s = stripDiacritics(s)
	return whitespaceRe.ReplaceAllString(s, "_")
}

func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

// String は前後の空白を除去し、欠損値を表すトークンを空文字列にします。
func String(v string) string {
	trimmed := strings.TrimSpace(v)
	if _, ok := nullTokens[strings.ToLower(trimmed)]; ok {
		return ""
	}
	return trimmed
}

// Upper は String の結果を大文字にします。
func Upper(v string) string {
	return strings.ToUpper(String(v))
}

// Date は日付文字列を UTC の暦日に変換します。解釈できない場合は nil を返します。
func Date(v string) *time.Time {
	s := String(v)
	if s == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t)
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= minExcelSerial && serial < maxExcelSerial+1 {
		t := excelEpoch.AddDate(0, 0, int(math.Floor(serial)))
		return &t
	}

	return nil
}

// Day は時刻を UTC の 0 時に切り詰めたポインタを返します。
func Day(t time.Time) *time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// Amount は金額文字列を decimal に変換します。解釈できない場合は 0 です。
// そのまま数値として読める値 (指数表記を含む) はそのまま使います。
// それ以外は通貨記号などを除いた数値部分について、区切り文字が両方ある場合は後ろにある方を小数点とみなし、
// カンマだけが 1 つある場合はカンマを小数点とみなします。
func Amount(v string) decimal.Decimal {
	s := strings.ReplaceAll(String(v), " ", "")
	if s == "" {
		return decimal.Zero
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d
	}

	m := amountRe.FindStringSubmatch(s)
	if m == nil {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(decimalSeparators(m[1]) + m[2])
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}
