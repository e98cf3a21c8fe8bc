package ratelimit

import (
	"fmt"
	"strings"
	"time"
)

// PeriodType is the granularity of a usage window.
type PeriodType string

const (
	PeriodHour  PeriodType = "hour"
	PeriodDay   PeriodType = "day"
	PeriodMonth PeriodType = "month"
)

// Periods lists the period types the service knows, shortest first.
func Periods() []PeriodType {
	return []PeriodType{PeriodHour, PeriodDay, PeriodMonth}
}

// Valid reports whether p is one of the known period types.
func (p PeriodType) Valid() bool {
	switch p {
	case PeriodHour, PeriodDay, PeriodMonth:
		return true
	default:
		return false
	}
}

// ParsePeriodType normalizes and validates a period name.
//
// The client itself forwards any string to the server; this is for callers
// that want to reject typos before a round trip.
func ParsePeriodType(value string) (PeriodType, error) {
	p := PeriodType(strings.ToLower(strings.TrimSpace(value)))
	if !p.Valid() {
		return "", fmt.Errorf("unsupported period type %q (expected hour, day or month)", value)
	}
	return p, nil
}

// RateLimit is the configured limit and current usage for one period.
type RateLimit struct {
	Limit     int       `json:"limit" yaml:"limit"`
	Remaining int       `json:"remaining" yaml:"remaining"`
	ResetAt   time.Time `json:"resetAt" yaml:"resetAt"`
}

// Used returns the number of requests consumed in the current window.
func (r RateLimit) Used() int {
	used := r.Limit - r.Remaining
	if used < 0 {
		return 0
	}
	return used
}

// RateLimitsConfigData is a snapshot of limits keyed by period.
type RateLimitsConfigData struct {
	Limits map[PeriodType]RateLimit `json:"limits" yaml:"limits"`
}

// UsageBucket is the usage recorded for one historical window.
type UsageBucket struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Usage     int       `json:"usage" yaml:"usage"`
}

// RateLimitHistoryData holds usage buckets in server order.
type RateLimitHistoryData struct {
	PeriodType PeriodType    `json:"periodType" yaml:"periodType"`
	History    []UsageBucket `json:"history" yaml:"history"`
}

// BaseResponse is the envelope every endpoint returns.
type BaseResponse[T any] struct {
	Success   bool   `json:"success" yaml:"success"`
	Data      *T     `json:"data,omitempty" yaml:"data,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
	Timestamp string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}
