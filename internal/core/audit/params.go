package audit

import (
	"fmt"
	"math"
	"strings"
)

// Profile は実行するルール群の版です。
// v1 は口座の使い回し (account hopping) を含み、v2 は契約・関係者のルールを含みます。
type Profile string

const (
	ProfileV1 Profile = "v1"
	ProfileV2 Profile = "v2"
)

const (
	DefaultMinAttendanceDays   = 1
	DefaultBenfordThresholdPct = 5
	maxAttendanceDays          = 31
	maxThresholdPct            = 100
)

// Params は 1 回の評価に使うパラメータです。
type Params struct {
	Profile             Profile
	MinAttendanceDays   int
	BenfordThresholdPct float64
	BenfordEnabled      bool
}

// DefaultParams は既定のパラメータを返します。
func DefaultParams() Params {
	return Params{
		Profile:             ProfileV2,
		MinAttendanceDays:   DefaultMinAttendanceDays,
		BenfordThresholdPct: DefaultBenfordThresholdPct,
		BenfordEnabled:      true,
	}
}

// ParseProfile は文字列をプロファイルに変換します。空文字列は v2 です。
func ParseProfile(raw string) (Profile, error) {
	switch Profile(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ProfileV2:
		return ProfileV2, nil
	case ProfileV1:
		return ProfileV1, nil
	default:
		return "", fmt.Errorf("%q: %w", raw, ErrInvalidProfile)
	}
}

// Validate は範囲を検査し、プロファイルを正規化したパラメータを返します。
func (p Params) Validate() (Params, error) {
	profile, err := ParseProfile(string(p.Profile))
	if err != nil {
		return Params{}, err
	}
	p.Profile = profile

	if p.MinAttendanceDays < 0 || p.MinAttendanceDays > maxAttendanceDays {
		return Params{}, fmt.Errorf("%d: %w", p.MinAttendanceDays, ErrInvalidMinDays)
	}
	if math.IsNaN(p.BenfordThresholdPct) || p.BenfordThresholdPct < 0 || p.BenfordThresholdPct > maxThresholdPct {
		return Params{}, fmt.Errorf("%v: %w", p.BenfordThresholdPct, ErrInvalidThreshold)
	}
	return p, nil
}
