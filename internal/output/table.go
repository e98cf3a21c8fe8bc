package output

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sudobility/ratelimit-client/internal/ratelimit"
)

func configTable(data *ratelimit.RateLimitsConfigData) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Period", "Limit", "Used", "Remaining", "Resets At"})

	if data == nil {
		return t
	}
	for _, p := range orderedPeriods(data.Limits) {
		limit := data.Limits[p]
		t.AppendRow(table.Row{
			string(p),
			limit.Limit,
			limit.Used(),
			limit.Remaining,
			formatTime(limit.ResetAt),
		})
	}
	return t
}

func historyTable(data *ratelimit.RateLimitHistoryData) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Window", "Usage"})

	if data == nil {
		return t
	}
	total := 0
	for _, bucket := range data.History {
		total += bucket.Usage
		t.AppendRow(table.Row{formatTime(bucket.Timestamp), bucket.Usage})
	}
	t.AppendFooter(table.Row{"Total (" + string(data.PeriodType) + ")", strconv.Itoa(total)})
	return t
}

// orderedPeriods lists known periods shortest first, then any others by name.
func orderedPeriods(limits map[ratelimit.PeriodType]ratelimit.RateLimit) []ratelimit.PeriodType {
	out := make([]ratelimit.PeriodType, 0, len(limits))
	for _, p := range ratelimit.Periods() {
		if _, ok := limits[p]; ok {
			out = append(out, p)
		}
	}

	var extra []ratelimit.PeriodType
	for p := range limits {
		if !p.Valid() {
			extra = append(extra, p)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func writeBox(w io.Writer, title, body string) error {
	lines := []string{title, "", body}
	_, err := io.WriteString(w, ascii.DrawBox(strings.Join(lines, "\n"), 0))
	return err
}
