package fixture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sudobility/ratelimit-client/internal/ratelimit"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 15, 10, 42, 0, 0, time.UTC)
}

func TestFixtureLimits(t *testing.T) {
	src := &FixtureSource{Now: fixedClock}

	data, err := src.Limits(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, data.Limits, 3)

	hour := data.Limits[ratelimit.PeriodHour]
	require.Equal(t, 100, hour.Limit)
	require.GreaterOrEqual(t, hour.Remaining, 0)
	require.LessOrEqual(t, hour.Remaining, hour.Limit)
	require.Equal(t, time.Date(2024, 3, 15, 11, 0, 0, 0, time.UTC), hour.ResetAt)

	require.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), data.Limits[ratelimit.PeriodDay].ResetAt)
	require.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), data.Limits[ratelimit.PeriodMonth].ResetAt)

	again, err := src.Limits(context.Background(), "acme")
	require.NoError(t, err)
	require.Equal(t, data, again)
}

func TestFixtureLimitsOverride(t *testing.T) {
	src := &FixtureSource{Now: fixedClock, PeriodLimits: map[ratelimit.PeriodType]int{ratelimit.PeriodHour: 0}}

	data, err := src.Limits(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, 0, data.Limits[ratelimit.PeriodHour].Limit)
	require.Equal(t, 0, data.Limits[ratelimit.PeriodHour].Remaining)
	require.Equal(t, 1000, data.Limits[ratelimit.PeriodDay].Limit)
}

func TestFixtureHistory(t *testing.T) {
	src := &FixtureSource{Now: fixedClock}

	tests := []struct {
		period ratelimit.PeriodType
		count  int
		first  time.Time
		last   time.Time
	}{
		{ratelimit.PeriodHour, 24, time.Date(2024, 3, 14, 11, 0, 0, 0, time.UTC), time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)},
		{ratelimit.PeriodDay, 30, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{ratelimit.PeriodMonth, 12, time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			data, err := src.History(context.Background(), "acme", tt.period)
			require.NoError(t, err)
			require.Equal(t, tt.period, data.PeriodType)
			require.Len(t, data.History, tt.count)
			require.Equal(t, tt.first, data.History[0].Timestamp)
			require.Equal(t, tt.last, data.History[len(data.History)-1].Timestamp)

			limit := DefaultLimits[tt.period]
			for _, b := range data.History {
				require.GreaterOrEqual(t, b.Usage, 0)
				require.LessOrEqual(t, b.Usage, limit)
			}
		})
	}
}

func TestFixtureHistoryMatchesCurrentWindow(t *testing.T) {
	src := &FixtureSource{Now: fixedClock}

	limits, err := src.Limits(context.Background(), "acme")
	require.NoError(t, err)
	history, err := src.History(context.Background(), "acme", ratelimit.PeriodDay)
	require.NoError(t, err)

	current := history.History[len(history.History)-1]
	require.Equal(t, limits.Limits[ratelimit.PeriodDay].Used(), current.Usage)
}

func TestFixtureHistoryInvalidPeriod(t *testing.T) {
	src := &FixtureSource{Now: fixedClock}

	_, err := src.History(context.Background(), "acme", ratelimit.PeriodType("week"))
	require.True(t, errors.Is(err, ErrInvalidPeriod))
}

func TestFixtureHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFixtureSource().Limits(ctx, "acme")
	require.ErrorIs(t, err, context.Canceled)
}
