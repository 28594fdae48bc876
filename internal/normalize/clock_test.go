package normalize

import (
	"errors"
	"testing"

	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		text    string
		want    string
		wantErr bool
	}{
		{text: "19:15", want: "19:15"},
		{text: "7:15AM PDT", want: "07:15"},
		{text: "12:00PM", want: "12:00"},
		{text: "12:00AM", want: "00:00"},
		{text: "7:15 PM", want: "19:15"},
		{text: "7:15 p.m.", want: "19:15"},
		{text: "9:05", want: "09:05"},
		{text: "19:15:00", want: "19:15"},
		{text: "8:30:00 PM MST", want: "20:30"},
		{text: "19:15 PDT", want: "19:15"},
		{text: "13:00 PM", wantErr: true},
		{text: "24:00", wantErr: true},
		{text: "7:75", wantErr: true},
		{text: "TBD", wantErr: true},
		{text: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseTime(tt.text)
			if tt.wantErr {
				if !errors.Is(err, schedule.ErrTimeUnparseable) {
					t.Errorf("ParseTime(%q) = %q, %v; want TimeUnparseable", tt.text, got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTime(%q) unexpected error: %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("ParseTime(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseTime_IdempotentOnNormalizedInput(t *testing.T) {
	for _, in := range []string{"00:00", "07:15", "12:00", "23:59"} {
		got, err := ParseTime(in)
		if err != nil || got != in {
			t.Errorf("ParseTime(%q) = %q, %v; want %q", in, got, err, in)
		}
	}
}

func TestSplitDateTime(t *testing.T) {
	tests := []struct {
		in       string
		wantDate string
		wantTime string
	}{
		{"Sat Sep 13 7:15 PM", "Sat Sep 13", "7:15 PM"},
		{"09/13/2025, 19:15", "09/13/2025", "19:15"},
		{"Sat Sep 13 7:15AM PDT", "Sat Sep 13", "7:15AM PDT"},
		{"Sat Sep 13", "Sat Sep 13", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, tm := SplitDateTime(tt.in)
			if d != tt.wantDate || tm != tt.wantTime {
				t.Errorf("SplitDateTime(%q) = (%q, %q), want (%q, %q)", tt.in, d, tm, tt.wantDate, tt.wantTime)
			}
		})
	}
}
