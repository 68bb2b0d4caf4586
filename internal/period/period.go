// Package period resolves calendar months into half-open date intervals.
package period

import (
	"time"

	apperrors "budgetledger/internal/errors"
)

// DateLayout is the storage encoding of a calendar date. Dates in this
// layout sort lexicographically in chronological order.
const DateLayout = "2006-01-02"

// Period is the half-open interval [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// Resolve returns the interval covering month of year. December ends on
// January 1st of the following year.
func Resolve(month, year int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, apperrors.ErrInvalidPeriod
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	var end time.Time
	if month == 12 {
		end = time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	} else {
		end = time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	}
	return Period{Start: start, End: end}, nil
}

// ResolveYear returns the interval covering the whole of year.
func ResolveYear(year int) Period {
	return Period{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// StartDate is the inclusive lower bound in storage encoding.
func (p Period) StartDate() string { return p.Start.Format(DateLayout) }

// EndDate is the exclusive upper bound in storage encoding.
func (p Period) EndDate() string { return p.End.Format(DateLayout) }

// Contains reports whether the stored date falls inside the period.
func (p Period) Contains(date string) bool {
	return date >= p.StartDate() && date < p.EndDate()
}

// Label renders the period for report titles, e.g. "March 2024".
func (p Period) Label() string {
	if p.End.Sub(p.Start) > 31*24*time.Hour {
		return p.Start.Format("2006")
	}
	return p.Start.Format("January 2006")
}

// ParseDate parses a storage-encoded date, rejecting anything that does
// not round-trip exactly.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil || t.Format(DateLayout) != s {
		return time.Time{}, apperrors.ErrInvalidDate
	}
	return t, nil
}
