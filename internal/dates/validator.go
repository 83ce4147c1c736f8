// Package dates validates calendar dates and date ranges embedded in free
// text. It is the gate every contract mutation passes through: text with a
// malformed, impossible, or backward date never becomes a stored contract.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// MinYear and MaxYear bound the reasonable-year-range check.
	MinYear = 1900
	MaxYear = 2100

	// DefaultMinDays and DefaultMaxDays bound lease duration (~100 years).
	DefaultMinDays = 1
	DefaultMaxDays = 36500
)

// arabicMonths maps Arabic month names to month numbers, covering both the
// standard and the Levantine (regional) spellings.
var arabicMonths = map[string]time.Month{
	"يناير": time.January, "كانون الثاني": time.January,
	"فبراير": time.February, "شباط": time.February,
	"مارس": time.March, "آذار": time.March,
	"أبريل": time.April, "نيسان": time.April, "ابريل": time.April,
	"مايو": time.May, "أيار": time.May, "ماي": time.May,
	"يونيو": time.June, "حزيران": time.June, "يونيه": time.June,
	"يوليو": time.July, "تموز": time.July, "يوليه": time.July,
	"أغسطس": time.August, "آب": time.August, "اغسطس": time.August,
	"سبتمبر": time.September, "أيلول": time.September,
	"أكتوبر": time.October, "تشرين الأول": time.October, "اكتوبر": time.October,
	"نوفمبر": time.November, "تشرين الثاني": time.November,
	"ديسمبر": time.December, "كانون الأول": time.December, "دسمبر": time.December,
}

// Validator checks dates against a fixed reference "today", which makes
// past-date decisions deterministic and testable.
type Validator struct {
	now time.Time
}

// New creates a Validator whose reference date is the current day.
func New() *Validator {
	return NewAt(time.Now())
}

// NewAt creates a Validator that treats ref's calendar day as "today".
func NewAt(ref time.Time) *Validator {
	return &Validator{now: time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)}
}

// Today returns the validator's reference date at midnight UTC.
func (v *Validator) Today() time.Time {
	return v.now
}

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

var daysPerMonth = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the number of days in the given month/year, or 0 for
// an invalid month.
func DaysInMonth(month, year int) int {
	if month < 1 || month > 12 {
		return 0
	}
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return daysPerMonth[month]
}

// IsCalendarDate reports whether day/month/year names a real calendar date.
func IsCalendarDate(day, month, year int) bool {
	if month < 1 || month > 12 {
		return false
	}
	return day >= 1 && day <= DaysInMonth(month, year)
}

// Components is a parsed day/month/year triple. It may name a date that
// does not exist (30 February); IsCalendarDate decides that separately, so
// error messages can say which part is wrong.
type Components struct {
	Day, Month, Year int
}

// Time converts the components to a time.Time. Only meaningful when the
// components pass IsCalendarDate.
func (c Components) Time() time.Time {
	return time.Date(c.Year, time.Month(c.Month), c.Day, 0, 0, 0, 0, time.UTC)
}

// ParseComponents extracts a day/month/year triple from a literal date
// string. Supported forms, tried in order:
//
//	23 فبراير 2026         (Arabic month name)
//	23/02/2026, 2/2/2026   (day-first with /, - or . separators)
//	2026/02/23             (year-first with /, - or . separators)
//
// Day-first vs year-first ambiguity is resolved by which token is 4 digits.
func (v *Validator) ParseComponents(s string) (Components, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Components{}, false
	}

	if m := arabicDatePattern.FindStringSubmatch(s); m != nil {
		if month, ok := arabicMonths[m[2]]; ok {
			day, _ := strconv.Atoi(m[1])
			year, _ := strconv.Atoi(m[3])
			return Components{Day: day, Month: int(month), Year: year}, true
		}
	}

	for _, sep := range []string{"/", "-", "."} {
		if !strings.Contains(s, sep) {
			continue
		}
		parts := strings.Split(s, sep)
		if len(parts) != 3 {
			continue
		}
		nums := make([]int, 3)
		ok := true
		for i, p := range parts {
			p = strings.TrimSpace(p)
			n, err := strconv.Atoi(p)
			if err != nil {
				ok = false
				break
			}
			parts[i] = p
			nums[i] = n
		}
		if !ok {
			continue
		}
		switch {
		case len(parts[2]) == 4:
			return Components{Day: nums[0], Month: nums[1], Year: nums[2]}, true
		case len(parts[0]) == 4:
			return Components{Day: nums[2], Month: nums[1], Year: nums[0]}, true
		}
	}

	return Components{}, false
}

// Parse returns the calendar date named by s, or false if s is not a
// well-formed, calendrically valid date literal.
func (v *Validator) Parse(s string) (time.Time, bool) {
	c, ok := v.ParseComponents(s)
	if !ok || !IsCalendarDate(c.Day, c.Month, c.Year) {
		return time.Time{}, false
	}
	return c.Time(), true
}

// ValidateDate checks a single date literal: parseable, calendrically real,
// and within the reasonable year range. The returned error is a plain
// English diagnostic; callers localize before showing it to users.
func (v *Validator) ValidateDate(s string) (time.Time, error) {
	c, ok := v.ParseComponents(s)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid date format: %s (use DD/MM/YYYY, e.g. 23/02/2026)", strings.TrimSpace(s))
	}
	if c.Month < 1 || c.Month > 12 {
		return time.Time{}, fmt.Errorf("month %d is invalid (must be between 1 and 12)", c.Month)
	}
	if max := DaysInMonth(c.Month, c.Year); c.Day < 1 || c.Day > max {
		return time.Time{}, fmt.Errorf("day %d is invalid for month %d/%d (maximum day is %d)", c.Day, c.Month, c.Year, max)
	}
	if c.Year < MinYear || c.Year > MaxYear {
		return time.Time{}, fmt.Errorf("year %d is out of the reasonable range (%d-%d)", c.Year, MinYear, MaxYear)
	}
	return c.Time(), nil
}

// RangeOptions controls ValidateRange. Zero MinDays/MaxDays fall back to
// the lease defaults.
type RangeOptions struct {
	AllowPastStart bool
	MinDays        int
	MaxDays        int
}

// ValidateRange checks a lease period given as two date literals. End must
// be strictly after start, the start must not precede today unless
// AllowPastStart is set, and the duration must fall within [MinDays, MaxDays].
func (v *Validator) ValidateRange(startStr, endStr string, opts RangeOptions) error {
	minDays := opts.MinDays
	if minDays == 0 {
		minDays = DefaultMinDays
	}
	maxDays := opts.MaxDays
	if maxDays == 0 {
		maxDays = DefaultMaxDays
	}

	start, err := v.ValidateDate(startStr)
	if err != nil {
		return fmt.Errorf("start date error: %w", err)
	}
	end, err := v.ValidateDate(endStr)
	if err != nil {
		return fmt.Errorf("end date error: %w", err)
	}

	if !opts.AllowPastStart && start.Before(v.now) {
		return fmt.Errorf("start date %s is in the past; lease contracts should start on or after today (%s)",
			strings.TrimSpace(startStr), v.now.Format("02/01/2006"))
	}

	if !end.After(start) {
		return fmt.Errorf("end date %s must be after start date %s (the lease period goes backward in time)",
			strings.TrimSpace(endStr), strings.TrimSpace(startStr))
	}

	duration := int(end.Sub(start).Hours() / 24)
	if duration < minDays {
		return fmt.Errorf("lease duration too short: %d days (minimum is %d days)", duration, minDays)
	}
	if duration > maxDays {
		return fmt.Errorf("lease duration too long: %d days (~%d years, maximum is %d years)",
			duration, duration/365, maxDays/365)
	}

	return nil
}
