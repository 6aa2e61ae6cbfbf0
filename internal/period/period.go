// Package period turns period tokens (week, month, quarter, year, custom)
// into closed date intervals relative to a reference day.
package period

import (
	"strings"
	"time"

	"github.com/jinzhu/now"

	"incometracker/internal/core"
)

type Token string

const (
	Today   Token = "today"
	Week    Token = "week"
	Month   Token = "month"
	Quarter Token = "quarter"
	Year    Token = "year"
	Custom  Token = "custom"
)

// Bounds of the monthly comparison window.
const (
	MinMonths = 1
	MaxMonths = 24
)

// Interval is a closed range of calendar days, Start <= End.
type Interval struct {
	Start core.Date
	End   core.Date
}

// Days is the number of calendar days covered, both ends included.
func (iv Interval) Days() int {
	return iv.Start.DaysUntil(iv.End) + 1
}

// Previous is the interval of equal length ending the day before Start.
func (iv Interval) Previous() Interval {
	end := iv.Start.AddDays(-1)
	return Interval{Start: end.AddDays(-(iv.Days() - 1)), End: end}
}

func (iv Interval) Contains(d core.Date) bool {
	return !d.Before(iv.Start) && !d.After(iv.End)
}

// Resolver computes intervals. Weeks start on Monday.
type Resolver struct {
	cfg *now.Config
}

func NewResolver() *Resolver {
	return &Resolver{cfg: &now.Config{WeekStartDay: time.Monday, TimeLocation: time.UTC}}
}

func (r *Resolver) at(today time.Time) *now.Now {
	d := core.DateOf(today)
	return r.cfg.With(d.Time)
}

// Resolve maps a token to an interval containing today. For custom, both
// start and end are required, must parse as YYYY-MM-DD, and start must not be
// after end. Tokens match exactly; anything else is invalid.
func (r *Resolver) Resolve(token, start, end string, today time.Time) (Interval, error) {
	n := r.at(today)
	switch Token(token) {
	case Today:
		return span(n.BeginningOfDay(), n.BeginningOfDay()), nil
	case Week:
		return span(n.BeginningOfWeek(), n.EndOfWeek()), nil
	case Quarter:
		return span(n.BeginningOfQuarter(), n.EndOfQuarter()), nil
	case Year:
		return span(n.BeginningOfYear(), n.EndOfYear()), nil
	case Month:
		return span(n.BeginningOfMonth(), n.EndOfMonth()), nil
	case Custom:
		return customInterval(start, end)
	default:
		return Interval{}, core.Invalid("analytics.period_invalid")
	}
}

// MonthOf returns the calendar month containing d.
func (r *Resolver) MonthOf(d time.Time) Interval {
	n := r.at(d)
	return span(n.BeginningOfMonth(), n.EndOfMonth())
}

// TrailingMonths returns the months calendar months ending with the month of
// today, oldest first.
func (r *Resolver) TrailingMonths(months int, today time.Time) ([]Interval, error) {
	if months < MinMonths || months > MaxMonths {
		return nil, core.Invalid("analytics.months_invalid")
	}
	first := r.at(today).BeginningOfMonth().AddDate(0, -(months - 1), 0)
	out := make([]Interval, 0, months)
	for i := 0; i < months; i++ {
		out = append(out, r.MonthOf(first.AddDate(0, i, 0)))
	}
	return out, nil
}

func customInterval(start, end string) (Interval, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return Interval{}, core.Invalid("analytics.custom_range_required")
	}
	s, err := core.ParseDate(start)
	if err != nil {
		return Interval{}, core.Invalid("analytics.date_invalid")
	}
	e, err := core.ParseDate(end)
	if err != nil {
		return Interval{}, core.Invalid("analytics.date_invalid")
	}
	if s.After(e) {
		return Interval{}, core.Invalid("analytics.range_invalid")
	}
	return Interval{Start: s, End: e}, nil
}

func span(from, to time.Time) Interval {
	return Interval{Start: core.DateOf(from), End: core.DateOf(to)}
}
