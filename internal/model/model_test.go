package model

import (
	"errors"
	"testing"
	"time"
)

// TestParseRaceTime はレースタイムの解析を検証する。
func TestParseRaceTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    RaceTime
		wantErr bool
	}{
		{in: "00:00:56.32", want: 5632},
		{in: "01:52.5", want: 11250},
		{in: "26.98", want: 2698},
		{in: "15:30:00", want: 5580000},
		{in: "61", want: 6100},
		{in: "1:00:00.01", want: 360001},
		{in: "", wantErr: true},
		{in: "00:00:00.00", wantErr: true},
		{in: "1:60.00", wantErr: true},
		{in: "56.321", wantErr: true},
		{in: "a:b", wantErr: true},
		{in: "1:2:3:4", wantErr: true},
		{in: "-5.00", wantErr: true},
		{in: ":30.00", wantErr: true},
		{in: "23:59:59.99", want: 8639999},
		{in: "1439:59.99", want: 8639999},
		{in: "86399.99", want: 8639999},
		{in: "24:00:00.00", wantErr: true},
		{in: "30:00:00.00", wantErr: true},
		{in: "1440:00.00", wantErr: true},
		{in: "86400", wantErr: true},
		{in: "5124095576030:00:00.00", wantErr: true},
		{in: "99999999999999:00:00.00", wantErr: true},
		{in: "+12.+1", wantErr: true},
		{in: "+12.10", wantErr: true},
		{in: "12.-1", wantErr: true},
		{in: "1:-5.00", wantErr: true},
		{in: "56.", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseRaceTime(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("ParseRaceTime(%q) error = %v, want ErrInvalid", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRaceTime(%q) でエラーが発生: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseRaceTime(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

// TestRaceTimeString はレースタイムの文字列表現を検証する。
func TestRaceTimeString(t *testing.T) {
	t.Parallel()

	tests := map[RaceTime]string{
		5632:   "00:00:56.32",
		11250:  "00:01:52.50",
		360001: "01:00:00.01",
	}
	for in, want := range tests {
		if got := in.String(); got != want {
			t.Errorf("RaceTime(%d).String() = %q, want %q", in, got, want)
		}
		parsed, err := ParseRaceTime(want)
		if err != nil || parsed != in {
			t.Errorf("ParseRaceTime(%q) = %d, %v, want %d", want, parsed, err, in)
		}
	}
}

// TestSwimmerValidate は選手の検証を検証する。
func TestSwimmerValidate(t *testing.T) {
	t.Parallel()

	valid := Swimmer{Gender: GenderFemale, FirstName: "Melina", LastName: "Mattis", BirthYear: 1994}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() でエラーが発生: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Swimmer)
	}{
		{name: "性別が空", modify: func(s *Swimmer) { s.Gender = "" }},
		{name: "未定義の性別", modify: func(s *Swimmer) { s.Gender = "W" }},
		{name: "名が空白のみ", modify: func(s *Swimmer) { s.FirstName = "  " }},
		{name: "姓が空", modify: func(s *Swimmer) { s.LastName = "" }},
		{name: "生年が範囲外", modify: func(s *Swimmer) { s.BirthYear = 1800 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := valid
			tt.modify(&s)
			if err := s.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error = %v, want ErrInvalid", err)
			}
		})
	}
}

// TestMeetValidate は大会の検証と日付の解析を検証する。
func TestMeetValidate(t *testing.T) {
	t.Parallel()

	start, err := ParseDate("02.05.2004")
	if err != nil {
		t.Fatalf("ParseDate() でエラーが発生: %v", err)
	}
	if want := time.Date(2004, time.May, 2, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("ParseDate() = %v, want %v", start, want)
	}

	for _, in := range []string{"2004-05-02", "32.01.2004", "", "02/05/2004"} {
		if _, err := ParseDate(in); !errors.Is(err, ErrInvalid) {
			t.Errorf("ParseDate(%q) error = %v, want ErrInvalid", in, err)
		}
	}

	m := Meet{Name: "8. Volvo-Lochner-Cup", StartDate: start, EndDate: start}
	if err := m.Validate(); err != nil {
		t.Errorf("同日開催の Validate() でエラーが発生: %v", err)
	}

	m.EndDate = start.AddDate(0, 0, -1)
	if err := m.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("終了日が開始日より前の Validate() error = %v, want ErrInvalid", err)
	}

	if err := (Meet{StartDate: start, EndDate: start}).Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("名前が空の Validate() error = %v, want ErrInvalid", err)
	}
}

// TestResultValidate は記録の検証を検証する。
func TestResultValidate(t *testing.T) {
	t.Parallel()

	valid := Result{SwimmerID: 1, MeetID: 1, Course: CourseLCM, Distance: 100, Stroke: StrokeBack, Time: 5900}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() でエラーが発生: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Result)
	}{
		{name: "選手IDが0", modify: func(r *Result) { r.SwimmerID = 0 }},
		{name: "大会IDが負", modify: func(r *Result) { r.MeetID = -1 }},
		{name: "未定義のプール種別", modify: func(r *Result) { r.Course = "LCY" }},
		{name: "公認されていない距離", modify: func(r *Result) { r.Distance = 75 }},
		{name: "未定義の泳法", modify: func(r *Result) { r.Stroke = "Butterfly" }},
		{name: "タイムが0", modify: func(r *Result) { r.Time = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := valid
			tt.modify(&r)
			if err := r.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error = %v, want ErrInvalid", err)
			}
		})
	}
}
