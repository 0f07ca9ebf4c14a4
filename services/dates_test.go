package services

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)

	for _, raw := range []string{"2026-06-03", "2026-06-03T14:25:00Z", " 2026-06-03 "} {
		got, err := ParseDate(raw)
		if err != nil {
			t.Errorf("ParseDate(%q): %v", raw, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", raw, got, want)
		}
	}

	for _, raw := range []string{"", "03/06/2026", "june 3rd"} {
		if _, err := ParseDate(raw); err == nil {
			t.Errorf("ParseDate(%q) accepted garbage", raw)
		}
	}
}

func TestRentalDays(t *testing.T) {
	cases := []struct {
		start, end string
		want       int
	}{
		{"2026-06-01", "2026-06-01", 1},
		{"2026-06-01", "2026-06-03", 3},
		{"2026-06-28", "2026-07-02", 5}, // month boundary
	}
	for _, tc := range cases {
		start, _ := ParseDate(tc.start)
		end, _ := ParseDate(tc.end)
		if got := RentalDays(start, end); got != tc.want {
			t.Errorf("RentalDays(%s, %s) = %d, want %d", tc.start, tc.end, got, tc.want)
		}
	}
}
