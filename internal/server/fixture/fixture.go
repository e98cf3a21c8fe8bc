// Package fixture generates deterministic rate limit data for the local
// service double.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/sudobility/ratelimit-client/internal/ratelimit"
)

// ErrInvalidPeriod is returned for period types the source does not know.
var ErrInvalidPeriod = errors.New("invalid period type")

// Source supplies the data served by the rate limit endpoints.
type Source interface {
	Limits(ctx context.Context, identifier string) (*ratelimit.RateLimitsConfigData, error)
	History(ctx context.Context, identifier string, periodType ratelimit.PeriodType) (*ratelimit.RateLimitHistoryData, error)
}

// DefaultLimits are the per-period limits used when none are configured.
var DefaultLimits = map[ratelimit.PeriodType]int{
	ratelimit.PeriodHour:  100,
	ratelimit.PeriodDay:   1000,
	ratelimit.PeriodMonth: 10000,
}

// bucketCounts is the number of history windows returned per period.
var bucketCounts = map[ratelimit.PeriodType]int{
	ratelimit.PeriodHour:  24,
	ratelimit.PeriodDay:   30,
	ratelimit.PeriodMonth: 12,
}

// FixtureSource derives usage from a hash of identifier, period and window start,
// so the same clock always yields the same answer.
type FixtureSource struct {
	Now func() time.Time
	// PeriodLimits overrides DefaultLimits per period.
	PeriodLimits map[ratelimit.PeriodType]int
}

// NewFixtureSource returns a source over the wall clock with DefaultLimits.
func NewFixtureSource() *FixtureSource {
	return &FixtureSource{Now: time.Now}
}

func (s *FixtureSource) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *FixtureSource) limit(p ratelimit.PeriodType) int {
	if v, ok := s.PeriodLimits[p]; ok {
		return v
	}
	return DefaultLimits[p]
}

// Limits reports the current window for every period.
func (s *FixtureSource) Limits(ctx context.Context, identifier string) (*ratelimit.RateLimitsConfigData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	data := &ratelimit.RateLimitsConfigData{Limits: make(map[ratelimit.PeriodType]ratelimit.RateLimit, 3)}
	for _, p := range ratelimit.Periods() {
		start := windowStart(p, now)
		limit := s.limit(p)
		used := usage(identifier, p, start, limit)
		data.Limits[p] = ratelimit.RateLimit{
			Limit:     limit,
			Remaining: limit - used,
			ResetAt:   nextWindow(p, start),
		}
	}
	return data, nil
}

// History returns usage buckets oldest first, ending with the current window.
func (s *FixtureSource) History(ctx context.Context, identifier string, periodType ratelimit.PeriodType) (*ratelimit.RateLimitHistoryData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	count, ok := bucketCounts[periodType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, periodType)
	}

	limit := s.limit(periodType)
	start := windowStart(periodType, s.now())
	buckets := make([]ratelimit.UsageBucket, count)
	for i := count - 1; i >= 0; i-- {
		buckets[i] = ratelimit.UsageBucket{
			Timestamp: start,
			Usage:     usage(identifier, periodType, start, limit),
		}
		start = previousWindow(periodType, start)
	}

	return &ratelimit.RateLimitHistoryData{PeriodType: periodType, History: buckets}, nil
}

func windowStart(p ratelimit.PeriodType, t time.Time) time.Time {
	switch p {
	case ratelimit.PeriodDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case ratelimit.PeriodMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return t.Truncate(time.Hour)
	}
}

func nextWindow(p ratelimit.PeriodType, start time.Time) time.Time {
	switch p {
	case ratelimit.PeriodDay:
		return start.AddDate(0, 0, 1)
	case ratelimit.PeriodMonth:
		return start.AddDate(0, 1, 0)
	default:
		return start.Add(time.Hour)
	}
}

func previousWindow(p ratelimit.PeriodType, start time.Time) time.Time {
	switch p {
	case ratelimit.PeriodDay:
		return start.AddDate(0, 0, -1)
	case ratelimit.PeriodMonth:
		return start.AddDate(0, -1, 0)
	default:
		return start.Add(-time.Hour)
	}
}

// usage is in [0, limit].
func usage(identifier string, p ratelimit.PeriodType, start time.Time, limit int) int {
	if limit <= 0 {
		return 0
	}
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s|%s|%d", identifier, p, start.Unix())
	return int(h.Sum32() % uint32(limit+1))
}
