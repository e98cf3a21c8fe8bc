package ratelimit

import "strings"

// QueryKey identifies a fetched resource for callers that key their own
// state or log lines by resource.
type QueryKey []string

// ConfigQueryKey identifies the limits snapshot.
func ConfigQueryKey() QueryKey {
	return QueryKey{"ratelimit", "config"}
}

// HistoryQueryKey identifies the usage history of one period.
func HistoryQueryKey(periodType PeriodType) QueryKey {
	return QueryKey{"ratelimit", "history", string(periodType)}
}

func (k QueryKey) String() string {
	return strings.Join(k, "/")
}
