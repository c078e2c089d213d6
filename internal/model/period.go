package model

import (
	"fmt"
	"strings"
	"time"
)

type PeriodType string

const (
	PeriodDaily   PeriodType = "DAILY"
	PeriodWeekly  PeriodType = "WEEKLY"
	PeriodMonthly PeriodType = "MONTHLY"
	PeriodYearly  PeriodType = "YEARLY"
)

func ParsePeriodType(raw string) (PeriodType, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "DAILY", "DAY":
		return PeriodDaily, nil
	case "WEEKLY", "WEEK":
		return PeriodWeekly, nil
	case "MONTHLY", "MONTH":
		return PeriodMonthly, nil
	case "YEARLY", "YEAR":
		return PeriodYearly, nil
	default:
		return "", fmt.Errorf("unknown period type %q", raw)
	}
}

// Period is the canonical window for one summary key. ReportDate always
// equals End and is the anchor the row is stored under.
type Period struct {
	Type       PeriodType
	ReportDate time.Time
	Start      time.Time
	End        time.Time
}

// DateOf strips the clock from t, keeping the calendar day as observed in
// t's location. The result is midnight UTC so keys compare by value.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ResolvePeriod maps a period type and reference date to its canonical
// window. Query and regeneration paths must both go through here so they
// agree on the same summary key.
func ResolvePeriod(periodType PeriodType, ref time.Time) Period {
	day := DateOf(ref)

	switch periodType {
	case PeriodWeekly:
		// Week runs Monday through Sunday; the report is anchored on the
		// next-or-same Sunday.
		end := day.AddDate(0, 0, (7-int(day.Weekday()))%7)
		start := end.AddDate(0, 0, -6)
		return Period{Type: periodType, ReportDate: end, Start: start, End: end}
	case PeriodMonthly:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, -1)
		return Period{Type: periodType, ReportDate: end, Start: start, End: end}
	case PeriodYearly:
		start := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(day.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
		return Period{Type: periodType, ReportDate: end, Start: start, End: end}
	default:
		return Period{Type: PeriodDaily, ReportDate: day, Start: day, End: day}
	}
}

// Contains reports whether the calendar day of t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	day := DateOf(t)
	return !day.Before(p.Start) && !day.After(p.End)
}

// Bounds expands the date window into timestamp bounds covering every
// instant of the period's first and last day.
func (p Period) Bounds() (time.Time, time.Time) {
	return p.Start, p.End.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
