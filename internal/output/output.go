// Package output renders rate limit data for the terminal and for files.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/sudobility/ratelimit-client/internal/ratelimit"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatYAML), "yml":
		return FormatYAML, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// Extension returns the file extension used when writing format to disk.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatMarkdown:
		return "md"
	default:
		return "txt"
	}
}

// RenderConfig writes a limits snapshot.
func RenderConfig(w io.Writer, format Format, data *ratelimit.RateLimitsConfigData) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, data)
	case FormatYAML:
		return writeYAML(w, data)
	case FormatMarkdown:
		return writeString(w, configTable(data).RenderMarkdown())
	}

	if data == nil || len(data.Limits) == 0 {
		return writeBox(w, "Rate Limits", "(no rate limits configured)")
	}
	return writeString(w, configTable(data).Render())
}

// RenderHistory writes usage buckets for one period.
func RenderHistory(w io.Writer, format Format, data *ratelimit.RateLimitHistoryData) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, data)
	case FormatYAML:
		return writeYAML(w, data)
	case FormatMarkdown:
		return writeString(w, historyTable(data).RenderMarkdown())
	}

	if data == nil || len(data.History) == 0 {
		title := "Usage History"
		if data != nil && data.PeriodType != "" {
			title = fmt.Sprintf("Usage History (%s)", data.PeriodType)
		}
		return writeBox(w, title, "(no usage recorded)")
	}
	return writeString(w, historyTable(data).Render())
}

// errorBody mirrors the service's failure envelope.
type errorBody struct {
	Success bool   `json:"success" yaml:"success"`
	Error   string `json:"error" yaml:"error"`
}

// RenderError writes a failure message.
func RenderError(w io.Writer, format Format, message string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, errorBody{Error: message})
	case FormatYAML:
		return writeYAML(w, errorBody{Error: message})
	case FormatMarkdown:
		return writeString(w, "**Error:** "+message)
	default:
		return writeBox(w, "Error", message)
	}
}

func writeString(w io.Writer, s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(w, s)
	return err
}
