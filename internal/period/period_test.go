package period

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incometracker/internal/core"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 15, 30, 0, 0, time.UTC)
}

func TestResolve(t *testing.T) {
	r := NewResolver()
	cases := []struct {
		name  string
		token string
		today time.Time
		start string
		end   string
	}{
		{"month leap year", "month", day(2024, 2, 15), "2024-02-01", "2024-02-29"},
		{"month non leap year", "month", day(2023, 2, 15), "2023-02-01", "2023-02-28"},
		{"quarter", "quarter", day(2024, 5, 10), "2024-04-01", "2024-06-30"},
		{"first quarter", "quarter", day(2024, 1, 1), "2024-01-01", "2024-03-31"},
		{"year", "year", day(2024, 7, 4), "2024-01-01", "2024-12-31"},
		{"week from wednesday", "week", day(2024, 5, 15), "2024-05-13", "2024-05-19"},
		{"week from sunday", "week", day(2024, 5, 19), "2024-05-13", "2024-05-19"},
		{"week from monday", "week", day(2024, 5, 13), "2024-05-13", "2024-05-19"},
		{"month end of year", "month", day(2024, 12, 31), "2024-12-01", "2024-12-31"},
		{"fourth quarter", "quarter", day(2024, 11, 15), "2024-10-01", "2024-12-31"},
		{"week across new year", "week", day(2025, 1, 1), "2024-12-30", "2025-01-05"},
		{"today", "today", day(2024, 3, 9), "2024-03-09", "2024-03-09"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			iv, err := r.Resolve(tc.token, "", "", tc.today)
			require.NoError(t, err)
			assert.Equal(t, tc.start, iv.Start.String())
			assert.Equal(t, tc.end, iv.End.String())
			assert.True(t, iv.Contains(core.DateOf(tc.today)))
		})
	}
}

func TestResolveUnknownToken(t *testing.T) {
	r := NewResolver()
	for _, token := range []string{"fortnight", "", "decade", "MONTH", "Week", " month"} {
		_, err := r.Resolve(token, "", "", day(2024, 3, 9))
		assert.ErrorIs(t, err, core.ErrValidation, token)
		assert.Equal(t, []string{"analytics.period_invalid"}, core.Keys(err))
	}
}

func TestResolveCustom(t *testing.T) {
	r := NewResolver()
	today := day(2024, 6, 1)

	iv, err := r.Resolve("custom", "2024-01-10", "2024-01-20", today)
	require.NoError(t, err)
	assert.Equal(t, 11, iv.Days())

	iv, err = r.Resolve("custom", "2024-01-10", "2024-01-10", today)
	require.NoError(t, err)
	assert.Equal(t, 1, iv.Days())

	bad := []struct{ start, end, key string }{
		{"", "2024-01-10", "analytics.custom_range_required"},
		{"2024-01-10", "", "analytics.custom_range_required"},
		{"2024-13-01", "2024-12-31", "analytics.date_invalid"},
		{"2024-01-20", "2024-01-10", "analytics.range_invalid"},
	}
	for _, b := range bad {
		_, err := r.Resolve("custom", b.start, b.end, today)
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrValidation))
		assert.Equal(t, []string{b.key}, core.Keys(err))
	}
}

func TestPrevious(t *testing.T) {
	r := NewResolver()
	iv, err := r.Resolve("month", "", "", day(2024, 3, 15))
	require.NoError(t, err)

	prev := iv.Previous()
	assert.Equal(t, "2024-01-30", prev.Start.String())
	assert.Equal(t, "2024-02-29", prev.End.String())
	assert.Equal(t, iv.Days(), prev.Days())
	assert.Equal(t, iv.Start, prev.End.AddDays(1))
}

func TestTrailingMonths(t *testing.T) {
	r := NewResolver()

	months, err := r.TrailingMonths(3, day(2024, 3, 15))
	require.NoError(t, err)
	require.Len(t, months, 3)
	assert.Equal(t, "2024-01-01", months[0].Start.String())
	assert.Equal(t, "2024-01-31", months[0].End.String())
	assert.Equal(t, "2024-02-29", months[1].End.String())
	assert.Equal(t, "2024-03-31", months[2].End.String())

	months, err = r.TrailingMonths(2, day(2024, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, "2023-12-01", months[0].Start.String())

	for _, n := range []int{MinMonths, MaxMonths} {
		got, err := r.TrailingMonths(n, day(2024, 3, 15))
		require.NoError(t, err)
		assert.Len(t, got, n)
	}
	for _, n := range []int{0, -1, MaxMonths + 1} {
		_, err := r.TrailingMonths(n, day(2024, 3, 15))
		assert.ErrorIs(t, err, core.ErrValidation)
	}
}
