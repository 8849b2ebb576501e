// Package benford はベンフォードの法則に基づく先頭桁分布の検定を行います。
package benford

import (
	"math"

	"github.com/shopspring/decimal"
)

// CriticalValue は自由度 8、有意水準 5% のカイ二乗臨界値です。
// 参考値として表示するだけで、判定には使用しません。
const CriticalValue = 15.51

// DigitRow は先頭桁ごとの観測値と期待値です。パーセンテージは小数第 2 位で丸めます。
type DigitRow struct {
	Digit        int
	Observed     int
	Expected     float64
	ObservedPct  float64
	ExpectedPct  float64
	DeviationPct float64
}

// Analysis は分析結果です。対象となる金額が無い場合 Rows は空、ChiSquare は 0 です。
type Analysis struct {
	Rows         []DigitRow
	ChiSquare    float64
	Observations int
}

// Empty は分析対象の金額が無かったかどうかを返します。
func (a Analysis) Empty() bool {
	return len(a.Rows) == 0
}

// ExpectedProportion は桁 d の理論上の出現比率 log10(1 + 1/d) を返します。
func ExpectedProportion(d int) float64 {
	return math.Log10(1 + 1/float64(d))
}

// LeadingDigit は正の数の先頭有効数字を返します。0 以下の場合は 0 です。
func LeadingDigit(n float64) int {
	n = math.Abs(n)
	if n == 0 || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0
	}
	for n >= 10 {
		n /= 10
	}
	for n > 0 && n < 1 {
		n *= 10
	}
	if n < 1 {
		return 0
	}
	return int(n)
}

// Analyze は金額の先頭桁分布を集計し、ベンフォード分布とのカイ二乗統計量を計算します。
// 0 以下の金額は除外します。
func Analyze(amounts []decimal.Decimal) Analysis {
	var observed [10]int
	total := 0
	for _, a := range amounts {
		if !a.IsPositive() {
			continue
		}
		f, _ := a.Float64()
		d := LeadingDigit(f)
		if d < 1 || d > 9 {
			continue
		}
		observed[d]++
		total++
	}

	if total == 0 {
		return Analysis{Rows: []DigitRow{}}
	}

	rows := make([]DigitRow, 0, 9)
	chi2 := 0.0
	for d := 1; d <= 9; d++ {
		p := ExpectedProportion(d)
		expected := p * float64(total)
		if expected > 0 {
			diff := float64(observed[d]) - expected
			chi2 += diff * diff / expected
		}
		obsPct := 100 * float64(observed[d]) / float64(total)
		expPct := 100 * p
		rows = append(rows, DigitRow{
			Digit:        d,
			Observed:     observed[d],
			Expected:     round2(expected),
			ObservedPct:  round2(obsPct),
			ExpectedPct:  round2(expPct),
			DeviationPct: round2(obsPct - expPct),
		})
	}

	return Analysis{Rows: rows, ChiSquare: chi2, Observations: total}
}

// Outliers は偏差の絶対値が threshold 以上の桁を返します。統計的な有意性の判定ではありません。
func (a Analysis) Outliers(threshold float64) []DigitRow {
	out := make([]DigitRow, 0)
	for _, r := range a.Rows {
		if math.Abs(r.DeviationPct) >= threshold {
			out = append(out, r)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
