// Package model は競泳記録のドメイン型と値の検証を提供する。
package model

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ErrInvalid は値が制約を満たさないことを表す。
var ErrInvalid = errors.New("不正な値")

// Gender は選手の性別区分。
type Gender string

// 性別区分の一覧。
const (
	GenderFemale Gender = "F"
	GenderMale   Gender = "M"
	GenderMixed  Gender = "X"
)

// Valid は定義済みの区分かどうかを返す。
func (g Gender) Valid() bool {
	return g == GenderFemale || g == GenderMale || g == GenderMixed
}

// Course はプールの種別。
type Course string

// プール種別の一覧。
const (
	CourseLCM Course = "LCM"
	CourseSCM Course = "SCM"
	CourseSCY Course = "SCY"
)

// Valid は定義済みの種別かどうかを返す。
func (c Course) Valid() bool {
	return c == CourseLCM || c == CourseSCM || c == CourseSCY
}

// Stroke は泳法。
type Stroke string

// 泳法の一覧。
const (
	StrokeBack   Stroke = "Back"
	StrokeBreast Stroke = "Breast"
	StrokeFly    Stroke = "Fly"
	StrokeFree   Stroke = "Free"
	StrokeIM     Stroke = "IM"
)

// Valid は定義済みの泳法かどうかを返す。
func (s Stroke) Valid() bool {
	switch s {
	case StrokeBack, StrokeBreast, StrokeFly, StrokeFree, StrokeIM:
		return true
	}
	return false
}

// Distances は公認されている種目距離の一覧。
var Distances = []int{25, 50, 100, 200, 400, 800, 1500}

// ValidDistance は公認されている距離かどうかを返す。
func ValidDistance(d int) bool {
	return slices.Contains(Distances, d)
}

// 生年の許容範囲。
const (
	MinBirthYear = 1900
	MaxBirthYear = 2100
)

// Swimmer は競泳選手。
type Swimmer struct {
	ID        int64
	Gender    Gender
	FirstName string
	LastName  string
	BirthYear int
}

// Validate は選手の各項目を検証する。
func (s Swimmer) Validate() error {
	switch {
	case !s.Gender.Valid():
		return fmt.Errorf("%w: gender %q", ErrInvalid, s.Gender)
	case strings.TrimSpace(s.FirstName) == "":
		return fmt.Errorf("%w: first name が空です", ErrInvalid)
	case strings.TrimSpace(s.LastName) == "":
		return fmt.Errorf("%w: last name が空です", ErrInvalid)
	case s.BirthYear < MinBirthYear || s.BirthYear > MaxBirthYear:
		return fmt.Errorf("%w: year of birth %d", ErrInvalid, s.BirthYear)
	}
	return nil
}

// DateLayout は大会日付の入出力形式（DD.MM.YYYY）。
const DateLayout = "02.01.2006"

// ParseDate はDD.MM.YYYY形式の日付を解析する。
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: 日付 %q", ErrInvalid, s)
	}
	return t, nil
}

// Meet は競泳大会。
type Meet struct {
	ID        int64
	Name      string
	StartDate time.Time
	EndDate   time.Time
	City      string
	Country   string
}

// Validate は大会の各項目を検証する。
func (m Meet) Validate() error {
	switch {
	case strings.TrimSpace(m.Name) == "":
		return fmt.Errorf("%w: name が空です", ErrInvalid)
	case m.StartDate.IsZero() || m.EndDate.IsZero():
		return fmt.Errorf("%w: 開催日が未設定です", ErrInvalid)
	case m.EndDate.Before(m.StartDate):
		return fmt.Errorf("%w: end date が start date より前です", ErrInvalid)
	}
	return nil
}

// RaceTime はレースタイム。1/100秒単位で保持する。
type RaceTime int64

// MaxRaceTime はタイムの上限（24時間、この値は含まない）。
const MaxRaceTime RaceTime = 24 * 60 * 60 * 100

// raceTimeUnits は時・分・秒の各フィールドの1/100秒単位の重み。
var raceTimeUnits = [...]int64{60 * 60 * 100, 60 * 100, 100}

// ParseRaceTime は "HH:MM:SS.ff"、"MM:SS.ff"、"SS.ff" 形式のタイムを解析する。
// 小数部は2桁まで、先頭以外のフィールドは60未満で、全体は24時間未満であること。
func ParseRaceTime(s string) (RaceTime, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if s == "" || len(parts) > len(raceTimeUnits) {
		return 0, fmt.Errorf("%w: タイム %q", ErrInvalid, s)
	}

	last := len(parts) - 1
	whole, frac, hasFrac := strings.Cut(parts[last], ".")
	if hasFrac && (len(frac) == 0 || len(frac) > 2 || !isDigits(frac)) {
		return 0, fmt.Errorf("%w: タイム %q の小数部が不正です", ErrInvalid, s)
	}
	parts[last] = whole

	var total int64
	for i, part := range parts {
		unit := raceTimeUnits[len(raceTimeUnits)-len(parts)+i]
		// 先頭フィールドは24時間に収まる範囲、それ以外は60未満
		limit := int64(60)
		if i == 0 {
			limit = int64(MaxRaceTime) / unit
		}
		v, err := parseField(part, limit)
		if err != nil {
			return 0, fmt.Errorf("%w: タイム %q", ErrInvalid, s)
		}
		total += v * unit
	}
	if hasFrac {
		cs, _ := strconv.ParseInt(frac+strings.Repeat("0", 2-len(frac)), 10, 64)
		total += cs
	}

	switch {
	case total <= 0:
		return 0, fmt.Errorf("%w: タイム %q は0より大きい必要があります", ErrInvalid, s)
	case total >= int64(MaxRaceTime):
		return 0, fmt.Errorf("%w: タイム %q は24時間未満である必要があります", ErrInvalid, s)
	}
	return RaceTime(total), nil
}

// parseField は時・分・秒の各フィールドを解析する。数字のみを受け付け、limit未満であること。
func parseField(s string, limit int64) (int64, error) {
	if !isDigits(s) || len(s) > 5 {
		return 0, ErrInvalid
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v >= limit {
		return 0, ErrInvalid
	}
	return v, nil
}

func isDigits(s string) bool {
	return s != "" && strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) < 0
}

// String は "HH:MM:SS.ff" 形式で返す。
func (t RaceTime) String() string {
	cs := int64(t)
	h := cs / (3600 * 100)
	cs -= h * 3600 * 100
	m := cs / (60 * 100)
	cs -= m * 60 * 100
	s := cs / 100
	cs -= s * 100
	return fmt.Sprintf("%02d:%02d:%02d.%02d", h, m, s, cs)
}

// Result は選手の大会における1種目の記録。
type Result struct {
	ID        int64
	SwimmerID int64
	MeetID    int64
	Course    Course
	Distance  int
	Stroke    Stroke
	Time      RaceTime
}

// Validate は記録の各項目を検証する。
func (r Result) Validate() error {
	switch {
	case r.SwimmerID <= 0:
		return fmt.Errorf("%w: swimmer id %d", ErrInvalid, r.SwimmerID)
	case r.MeetID <= 0:
		return fmt.Errorf("%w: meet id %d", ErrInvalid, r.MeetID)
	case !r.Course.Valid():
		return fmt.Errorf("%w: course %q", ErrInvalid, r.Course)
	case !ValidDistance(r.Distance):
		return fmt.Errorf("%w: distance %d", ErrInvalid, r.Distance)
	case !r.Stroke.Valid():
		return fmt.Errorf("%w: stroke %q", ErrInvalid, r.Stroke)
	case r.Time <= 0:
		return fmt.Errorf("%w: time は0より大きい必要があります", ErrInvalid)
	}
	return nil
}
