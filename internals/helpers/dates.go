package helper

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDateLenient parses YYYY-MM-DD; a malformed or empty value yields (nil, false).
// List/read flows drop the filter instead of rejecting the request.
func ParseDateLenient(raw string) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// ParseDateStrict parses YYYY-MM-DD and surfaces the error. Export flows reject
// malformed dates with a 400.
func ParseDateStrict(raw string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(raw))
}
