// internal/dates/scan.go
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Literal date families located during a scan. The Arabic pattern matches
// single-word month names only; multi-word names (تشرين الأول) appear in the
// lookup table but are not discovered inside running text.
var (
	dayFirstPattern   = regexp.MustCompile(`\d{1,2}[/.-]\d{1,2}[/.-]\d{4}`)
	yearFirstPattern  = regexp.MustCompile(`\d{4}[/.-]\d{1,2}[/.-]\d{1,2}`)
	arabicDatePattern = regexp.MustCompile(`(\d{1,2})\s+([\x{0621}-\x{064A}]+)\s+(\d{4})`)
)

// Range phrases: "from X to Y", the "Term: from X to Y" header form, and the
// Arabic equivalents with إلى / حتى / الى.
var rangePatterns = []*regexp.Regexp{
	regexp.MustCompile(`من\s+(\d{1,2}[/.-]\d{1,2}[/.-]\d{4})\s+(?:إلى|حتى|الى)\s+(\d{1,2}[/.-]\d{1,2}[/.-]\d{4})`),
	regexp.MustCompile(`(?i)from\s+(\d{1,2}[/.-]\d{1,2}[/.-]\d{4})\s+to\s+(\d{1,2}[/.-]\d{1,2}[/.-]\d{4})`),
	regexp.MustCompile(`(?i)From[:\s]+(\d{1,2}[/.-]\d{1,2}[/.-]\d{4})\s+to\s+(\d{1,2}[/.-]\d{1,2}[/.-]\d{4})`),
	regexp.MustCompile(`(?i)Term[:\s]+from\s+(\d{1,2}[/.-]\d{1,2}[/.-]\d{4})\s+to\s+(\d{1,2}[/.-]\d{1,2}[/.-]\d{4})`),
}

// Finding is a single date-like substring discovered in a scan.
type Finding struct {
	Text  string
	Date  time.Time // zero when invalid
	Valid bool
	Err   string
}

// ScanReport collects every finding and every error from one pass over a
// text. The scan is exhaustive: all problems are reported, not just the
// first.
type ScanReport struct {
	Findings []Finding
	Errors   []string
}

// Valid reports whether the scan found no date problems.
func (r *ScanReport) Valid() bool {
	return len(r.Errors) == 0
}

// Combined joins all errors into the single message shown to the user.
func (r *ScanReport) Combined() string {
	return strings.Join(r.Errors, "; ")
}

// Scan locates every date-like substring in text, validates each one, and
// additionally validates any explicit range phrase. allowPastStart relaxes
// the past-start rule for ranges (reviewing a historical contract is
// legitimate).
func (v *Validator) Scan(text string, allowPastStart bool) *ScanReport {
	report := &ScanReport{}

	for _, pattern := range []*regexp.Regexp{dayFirstPattern, yearFirstPattern, arabicDatePattern} {
		for _, match := range pattern.FindAllString(text, -1) {
			if pattern == arabicDatePattern {
				// Digit-word-digit sequences that are not month names are
				// ordinary prose, not malformed dates.
				m := arabicDatePattern.FindStringSubmatch(match)
				if _, known := arabicMonths[m[2]]; !known {
					continue
				}
			}
			parsed, err := v.ValidateDate(match)
			finding := Finding{Text: match, Date: parsed, Valid: err == nil}
			if err != nil {
				finding.Err = err.Error()
				report.Errors = append(report.Errors, fmt.Sprintf("invalid date %q: %v", match, err))
			}
			report.Findings = append(report.Findings, finding)
		}
	}

	for _, pattern := range rangePatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			if err := v.ValidateRange(m[1], m[2], RangeOptions{AllowPastStart: allowPastStart}); err != nil {
				report.Errors = append(report.Errors, err.Error())
			}
		}
	}

	return report
}
