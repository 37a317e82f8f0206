// Package period parses reporting period labels into half-open time ranges.
package period

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	pkgerrors "github.com/ecopoints-io/ecopoints-backend/pkg/errors"
)

var (
	monthPattern   = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	quarterPattern = regexp.MustCompile(`^(\d{4})-Q([1-4])$`)
	yearPattern    = regexp.MustCompile(`^(\d{4})$`)
)

// Period is a half-open range [Start, End) labelled like "2026-08",
// "2026-Q3" or "2026".
type Period struct {
	Label string
	Start time.Time
	End   time.Time
}

// Parse reads a period label. Months use "YYYY-MM", quarters "YYYY-Qn" and
// years "YYYY".
func Parse(label string) (Period, error) {
	if m := monthPattern.FindStringSubmatch(label); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return Period{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid month in period %q", label))
		}
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		return Period{Label: label, Start: start, End: start.AddDate(0, 1, 0)}, nil
	}
	if m := quarterPattern.FindStringSubmatch(label); m != nil {
		year, _ := strconv.Atoi(m[1])
		quarter, _ := strconv.Atoi(m[2])
		start := time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
		return Period{Label: label, Start: start, End: start.AddDate(0, 3, 0)}, nil
	}
	if m := yearPattern.FindStringSubmatch(label); m != nil {
		year, _ := strconv.Atoi(m[1])
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return Period{Label: label, Start: start, End: start.AddDate(1, 0, 0)}, nil
	}
	return Period{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid period %q", label))
}

// Resolve accepts the relative keywords "monthly", "quarterly" and "yearly",
// mapping them onto the period containing now, and falls back to Parse for
// explicit labels.
func Resolve(label string, now time.Time) (Period, error) {
	now = now.UTC()
	switch label {
	case "monthly":
		label = now.Format("2006-01")
	case "quarterly":
		label = fmt.Sprintf("%d-Q%d", now.Year(), (int(now.Month())-1)/3+1)
	case "yearly":
		label = now.Format("2006")
	}
	return Parse(label)
}
