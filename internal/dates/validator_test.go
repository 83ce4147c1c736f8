// internal/dates/validator_test.go
package dates

import (
	"strings"
	"testing"
	"time"
)

// Reference "today" for deterministic past-date checks.
var testNow = time.Date(2026, time.January, 15, 10, 30, 0, 0, time.UTC)

func testValidator() *Validator {
	return NewAt(testNow)
}

func TestParseFormats(t *testing.T) {
	v := testValidator()

	cases := []struct {
		in   string
		want time.Time
	}{
		{"23/02/2026", time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)},
		{"23-02-2026", time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)},
		{"23.02.2026", time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)},
		{"2026/02/23", time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)},
		{"2026-02-23", time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)},
		{"2/2/2026", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)},
		{"1/12/2030", time.Date(2030, 12, 1, 0, 0, 0, 0, time.UTC)},
		{"  23/02/2026  ", time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)},
		{"23 فبراير 2026", time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)},
		{"1 شباط 2027", time.Date(2027, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"30 حزيران 2026", time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got, ok := v.Parse(tc.in)
		if !ok {
			t.Errorf("Parse(%q) failed", tc.in)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	v := testValidator()

	// Every supported literal format must recover the same calendar date,
	// across month boundaries and leap/non-leap Februaries.
	dates := []time.Time{
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), // leap February
		time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), // non-leap February
		time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC), // 400-rule leap year
	}
	layouts := []string{"02/01/2006", "02-01-2006", "02.01.2006", "2006/01/02", "2006-01-02"}

	for _, d := range dates {
		for _, layout := range layouts {
			formatted := d.Format(layout)
			got, ok := v.Parse(formatted)
			if !ok {
				t.Errorf("Parse(%q) failed", formatted)
				continue
			}
			if !got.Equal(d) {
				t.Errorf("Parse(%q) = %v, want %v", formatted, got, d)
			}
		}
	}
}

func TestParseRejects(t *testing.T) {
	v := testValidator()

	for _, in := range []string{
		"",
		"not a date",
		"23/02",
		"23/02/26",  // 2-digit year
		"ab/02/2026",
		"30/02/2026", // impossible day
		"29/02/2025", // Feb 29 in non-leap year
	} {
		if _, ok := v.Parse(in); ok {
			t.Errorf("Parse(%q) succeeded, want failure", in)
		}
	}
}

func TestIsLeapYear(t *testing.T) {
	for year := 1900; year <= 2100; year++ {
		want := year%4 == 0 && (year%100 != 0 || year%400 == 0)
		if got := IsLeapYear(year); got != want {
			t.Errorf("IsLeapYear(%d) = %v, want %v", year, got, want)
		}
		// The leap-year invariant through the calendric check.
		if got := IsCalendarDate(29, 2, year); got != want {
			t.Errorf("IsCalendarDate(29, 2, %d) = %v, want %v", year, got, want)
		}
	}
}

func TestIsCalendarDate(t *testing.T) {
	cases := []struct {
		day, month, year int
		want             bool
	}{
		{1, 1, 2026, true},
		{31, 1, 2026, true},
		{31, 4, 2026, false},
		{30, 4, 2026, true},
		{0, 1, 2026, false},
		{1, 0, 2026, false},
		{1, 13, 2026, false},
		{29, 2, 2024, true},
		{29, 2, 2100, false}, // divisible by 100, not by 400
		{29, 2, 2000, true},
		{32, 7, 2026, false},
	}
	for _, tc := range cases {
		if got := IsCalendarDate(tc.day, tc.month, tc.year); got != tc.want {
			t.Errorf("IsCalendarDate(%d, %d, %d) = %v, want %v", tc.day, tc.month, tc.year, got, tc.want)
		}
	}
}

func TestValidateDateImpossibleDay(t *testing.T) {
	v := testValidator()

	_, err := v.ValidateDate("30/02/2026")
	if err == nil {
		t.Fatal("expected error for 30/02/2026")
	}
	msg := err.Error()
	for _, want := range []string{"day 30", "month 2/2026", "maximum day is 28"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
}

func TestValidateDateYearRange(t *testing.T) {
	v := testValidator()

	if _, err := v.ValidateDate("01/01/1899"); err == nil {
		t.Error("expected error for year 1899")
	}
	if _, err := v.ValidateDate("01/01/2101"); err == nil {
		t.Error("expected error for year 2101")
	}
	if _, err := v.ValidateDate("01/01/1900"); err != nil {
		t.Errorf("year 1900 should be valid: %v", err)
	}
	if _, err := v.ValidateDate("31/12/2100"); err != nil {
		t.Errorf("year 2100 should be valid: %v", err)
	}
}

func TestValidateRange(t *testing.T) {
	v := testValidator()

	// Valid future range.
	if err := v.ValidateRange("01/02/2026", "01/02/2027", RangeOptions{}); err != nil {
		t.Errorf("valid range rejected: %v", err)
	}

	// End before start always fails, regardless of other options.
	for _, opts := range []RangeOptions{{}, {AllowPastStart: true}, {AllowPastStart: true, MinDays: 0, MaxDays: 100000}} {
		err := v.ValidateRange("10/01/2026", "05/01/2026", opts)
		if err == nil {
			t.Fatalf("backward range accepted with opts %+v", opts)
		}
		if !strings.Contains(err.Error(), "must be after start date") {
			t.Errorf("unexpected error for backward range: %v", err)
		}
	}

	// End equal to start fails (strict, not inclusive).
	if err := v.ValidateRange("10/01/2026", "10/01/2026", RangeOptions{AllowPastStart: true}); err == nil {
		t.Error("zero-length range accepted")
	}

	// Past start rejected unless allowed.
	if err := v.ValidateRange("01/01/2020", "01/01/2021", RangeOptions{}); err == nil {
		t.Error("past start accepted without AllowPastStart")
	}
	if err := v.ValidateRange("01/01/2020", "01/01/2021", RangeOptions{AllowPastStart: true}); err != nil {
		t.Errorf("past start rejected with AllowPastStart: %v", err)
	}

	// Today is not "in the past".
	if err := v.ValidateRange("15/01/2026", "15/01/2027", RangeOptions{}); err != nil {
		t.Errorf("range starting today rejected: %v", err)
	}

	// Duration bounds.
	if err := v.ValidateRange("01/02/2026", "15/02/2026", RangeOptions{MinDays: 30}); err == nil {
		t.Error("too-short duration accepted")
	}
	if err := v.ValidateRange("01/02/2026", "01/02/2096", RangeOptions{MaxDays: 365}); err == nil {
		t.Error("too-long duration accepted")
	}

	// Invalid endpoint surfaces as a range error.
	err := v.ValidateRange("30/02/2026", "01/06/2026", RangeOptions{})
	if err == nil || !strings.Contains(err.Error(), "start date error") {
		t.Errorf("invalid start endpoint: got %v", err)
	}
	err = v.ValidateRange("01/06/2026", "31/11/2026", RangeOptions{})
	if err == nil || !strings.Contains(err.Error(), "end date error") {
		t.Errorf("invalid end endpoint: got %v", err)
	}
}
