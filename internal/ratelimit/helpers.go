package ratelimit

import (
	"fmt"
	"reflect"
	"strings"
)

const contentTypeJSON = "application/json"

// CreateHeaders returns the JSON headers sent with every request.
func CreateHeaders() map[string]string {
	return map[string]string{
		"Content-Type": contentTypeJSON,
		"Accept":       contentTypeJSON,
	}
}

// CreateAuthHeaders returns the JSON headers plus a bearer authorization.
func CreateAuthHeaders(token string) map[string]string {
	headers := CreateHeaders()
	headers["Authorization"] = "Bearer " + token
	return headers
}

// BuildURL joins baseURL and path, dropping a single trailing slash from baseURL.
func BuildURL(baseURL, path string) string {
	return strings.TrimSuffix(baseURL, "/") + path
}

// QueryParam is one key/value pair of a query string.
type QueryParam struct {
	Key   string
	Value any
}

// QueryParams keeps insertion order, which map[string]any cannot.
type QueryParams []QueryParam

// BuildQueryString renders params as "?k=v&k=v". Nil values (including nil
// pointers) are skipped; when nothing remains the result is "".
func BuildQueryString(params QueryParams) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		value, ok := queryValue(p.Value)
		if !ok {
			continue
		}
		parts = append(parts, EncodeURIComponent(p.Key)+"="+EncodeURIComponent(value))
	}
	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}

func queryValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	return fmt.Sprint(rv.Interface()), true
}

// EncodeURIComponent percent-encodes s for use as a single path segment or
// query value. Only ASCII letters, digits and -_.!~*'() pass through
// unchanged, so "/" becomes %2F and a space becomes %20.
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreservedComponentByte(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func unreservedComponentByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
