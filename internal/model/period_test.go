package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParsePeriodType(t *testing.T) {
	cases := map[string]PeriodType{
		"daily":   PeriodDaily,
		"DAY":     PeriodDaily,
		"Weekly":  PeriodWeekly,
		"month":   PeriodMonthly,
		"YEARLY":  PeriodYearly,
		" year	": PeriodYearly,
	}
	for raw, want := range cases {
		got, err := ParsePeriodType(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParsePeriodType("quarterly")
	assert.Error(t, err)
}

func TestResolvePeriodDaily(t *testing.T) {
	ref := time.Date(2025, time.March, 14, 17, 45, 3, 0, time.Local)
	p := ResolvePeriod(PeriodDaily, ref)

	assert.Equal(t, date(2025, time.March, 14), p.ReportDate)
	assert.Equal(t, p.ReportDate, p.Start)
	assert.Equal(t, p.ReportDate, p.End)
}

func TestResolvePeriodWeekly(t *testing.T) {
	// 2025-03-12 is a Wednesday; its week is Mon 10th through Sun 16th.
	p := ResolvePeriod(PeriodWeekly, date(2025, time.March, 12))
	assert.Equal(t, date(2025, time.March, 16), p.ReportDate)
	assert.Equal(t, date(2025, time.March, 10), p.Start)
	assert.Equal(t, date(2025, time.March, 16), p.End)

	// A Sunday anchors its own week.
	p = ResolvePeriod(PeriodWeekly, date(2025, time.March, 16))
	assert.Equal(t, date(2025, time.March, 16), p.ReportDate)
	assert.Equal(t, date(2025, time.March, 10), p.Start)

	// A Monday starts a fresh week ending the following Sunday.
	p = ResolvePeriod(PeriodWeekly, date(2025, time.March, 17))
	assert.Equal(t, date(2025, time.March, 23), p.ReportDate)
	assert.Equal(t, date(2025, time.March, 17), p.Start)
}

func TestResolvePeriodMonthly(t *testing.T) {
	p := ResolvePeriod(PeriodMonthly, date(2025, time.February, 10))
	assert.Equal(t, date(2025, time.February, 1), p.Start)
	assert.Equal(t, date(2025, time.February, 28), p.End)
	assert.Equal(t, p.End, p.ReportDate)

	// Leap year February.
	p = ResolvePeriod(PeriodMonthly, date(2024, time.February, 29))
	assert.Equal(t, date(2024, time.February, 29), p.End)

	p = ResolvePeriod(PeriodMonthly, date(2025, time.December, 31))
	assert.Equal(t, date(2025, time.December, 1), p.Start)
	assert.Equal(t, date(2025, time.December, 31), p.End)
}

func TestResolvePeriodYearly(t *testing.T) {
	p := ResolvePeriod(PeriodYearly, date(2025, time.June, 15))
	assert.Equal(t, date(2025, time.January, 1), p.Start)
	assert.Equal(t, date(2025, time.December, 31), p.End)
	assert.Equal(t, p.End, p.ReportDate)
}

func TestResolvePeriodInvariants(t *testing.T) {
	refs := []time.Time{
		date(2023, time.January, 1),
		date(2024, time.February, 29),
		date(2025, time.March, 16),
		date(2025, time.December, 31),
		time.Date(2025, time.July, 4, 23, 59, 59, 0, time.UTC),
	}
	types := []PeriodType{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly}

	for _, ref := range refs {
		for _, periodType := range types {
			p := ResolvePeriod(periodType, ref)
			assert.False(t, p.End.Before(p.Start), "%s %s: start after end", periodType, ref)
			assert.Equal(t, p.End, p.ReportDate, "%s %s: report date not end-anchored", periodType, ref)
			assert.True(t, p.Contains(ref), "%s %s: period must contain its reference", periodType, ref)

			// Resolving again from any day inside the period yields the same key.
			again := ResolvePeriod(periodType, p.Start)
			assert.Equal(t, p.ReportDate, again.ReportDate, "%s %s: unstable key", periodType, ref)
		}
	}
}

func TestPeriodBounds(t *testing.T) {
	p := ResolvePeriod(PeriodMonthly, date(2025, time.April, 10))
	from, to := p.Bounds()

	assert.Equal(t, date(2025, time.April, 1), from)
	assert.True(t, to.After(date(2025, time.April, 30)), "bounds must cover the last day")
	assert.True(t, to.Before(date(2025, time.May, 1)), "bounds must not leak into the next period")
}

func TestPeriodContains(t *testing.T) {
	p := ResolvePeriod(PeriodWeekly, date(2025, time.March, 12))

	assert.True(t, p.Contains(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.Contains(time.Date(2025, time.March, 16, 23, 59, 0, 0, time.UTC)))
	assert.False(t, p.Contains(date(2025, time.March, 9)))
	assert.False(t, p.Contains(date(2025, time.March, 17)))
}
