// internal/dates/suggest.go
package dates

import "fmt"

// Suggestions proposes corrections for an invalid date literal: the nearest
// valid day, leap-year alternatives for February 29, or a format hint when
// the string cannot be parsed at all.
func (v *Validator) Suggestions(s string) []string {
	var out []string

	c, ok := v.ParseComponents(s)
	if !ok {
		return []string{"use format DD/MM/YYYY (e.g. 23/02/2026)"}
	}

	if c.Month == 2 && c.Day == 29 && !IsLeapYear(c.Year) {
		out = append(out,
			fmt.Sprintf("February 29 does not exist in %d (not a leap year)", c.Year),
			fmt.Sprintf("try 28/02/%d or 01/03/%d", c.Year, c.Year),
		)
		for next := c.Year + 1; next < c.Year+10; next++ {
			if IsLeapYear(next) {
				out = append(out, fmt.Sprintf("or use a leap year: 29/02/%d", next))
				break
			}
		}
		return out
	}

	if max := DaysInMonth(c.Month, c.Year); max > 0 && c.Day > max {
		out = append(out,
			fmt.Sprintf("day %d is invalid for month %d/%d (maximum day is %d)", c.Day, c.Month, c.Year, max),
			fmt.Sprintf("try %d/%02d/%d", max, c.Month, c.Year),
		)
	}

	if IsCalendarDate(c.Day, c.Month, c.Year) && c.Time().Before(v.now.AddDate(-1, 0, 0)) {
		out = append(out, fmt.Sprintf("date %s is more than a year in the past; consider a current or future date",
			c.Time().Format("02/01/2006")))
	}

	return out
}
