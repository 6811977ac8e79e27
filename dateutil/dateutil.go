// Package dateutil provides month arithmetic and lenient date parsing for
// COUNTER reporting periods.
package dateutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/jinzhu/now"
)

// Period is a covered date range, normally month aligned.
type Period struct {
	Begin time.Time
	End   time.Time
}

func (p Period) String() string {
	return fmt.Sprintf("%s to %s", p.Begin.Format("2006-01-02"), p.End.Format("2006-01-02"))
}

// Validate checks that the period end does not precede the start.
func (p Period) Validate() error {
	if p.End.Before(p.Begin) {
		return fmt.Errorf("invalid period: end %v before begin %v", p.End, p.Begin)
	}
	return nil
}

// IsMonthAligned reports whether the period runs from the first day of a
// month to the last day of a month.
func (p Period) IsMonthAligned() bool {
	return p.Begin.Equal(FirstOfMonth(p.Begin)) && p.End.Equal(LastOfMonth(p.End))
}

// Months returns the first day of every calendar month in the period, in
// order. An inverted period yields nil.
func (p Period) Months() (result []time.Time) {
	if p.End.Before(p.Begin) {
		return nil
	}
	last := FirstOfMonth(p.End)
	for m := FirstOfMonth(p.Begin); !m.After(last); m = NextMonth(m) {
		result = append(result, m)
	}
	return result
}

// Parse parses a date string in a variety of layouts, e.g. 2006-01-02,
// 01/02/2006 or RFC3339 timestamps.
func Parse(value string) (time.Time, error) {
	t, err := dateparse.ParseStrict(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, err
	}
	return midnight(t), nil
}

// MustParse is like Parse but panics on error.
func MustParse(value string) time.Time {
	t, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseCovered parses a covered period line, accepting both the tabular
// "YYYY-MM-DD to YYYY-MM-DD" form and the SUSHI style
// "Begin_Date=YYYY-MM-DD; End_Date=YYYY-MM-DD" form.
func ParseCovered(value string) (Period, error) {
	value = strings.TrimSpace(value)
	if strings.Contains(value, "Begin_Date") {
		var p Period
		for _, field := range strings.Split(value, ";") {
			k, v, ok := strings.Cut(strings.TrimSpace(field), "=")
			if !ok {
				continue
			}
			t, err := Parse(v)
			if err != nil {
				return Period{}, fmt.Errorf("covered period: %w", err)
			}
			switch strings.TrimSpace(k) {
			case "Begin_Date":
				p.Begin = t
			case "End_Date":
				p.End = t
			}
		}
		if p.Begin.IsZero() || p.End.IsZero() {
			return Period{}, fmt.Errorf("covered period missing begin or end date: %s", value)
		}
		return p, nil
	}
	begin, end, ok := strings.Cut(value, " to ")
	if !ok {
		return Period{}, fmt.Errorf("unparseable covered period: %s", value)
	}
	b, err := Parse(begin)
	if err != nil {
		return Period{}, err
	}
	e, err := Parse(end)
	if err != nil {
		return Period{}, err
	}
	return Period{Begin: b, End: e}, nil
}

// ParseMonthColumn parses a month column header like "Jan-2014" or "Jan-14"
// into the first day of that month.
func ParseMonthColumn(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"Jan-2006", "Jan-06", "Jan 2006", "2006-01"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable month column: %s", value)
}

// FirstOfMonth returns the first day of the month of t.
func FirstOfMonth(t time.Time) time.Time {
	return midnight(now.With(t).BeginningOfMonth())
}

// LastOfMonth returns the last day of the month of t, at midnight.
func LastOfMonth(t time.Time) time.Time {
	return midnight(now.With(t).EndOfMonth())
}

// NextMonth returns the first day of the month after t.
func NextMonth(t time.Time) time.Time {
	return FirstOfMonth(now.With(t).EndOfMonth().Add(24 * time.Hour))
}

// PrevMonth returns the first day of the month before t.
func PrevMonth(t time.Time) time.Time {
	return FirstOfMonth(now.With(t).BeginningOfMonth().Add(-24 * time.Hour))
}

// Date is a shorthand for a UTC midnight timestamp.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
