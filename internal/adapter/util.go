package adapter

import (
	"strings"
	"time"
	"unicode"
)

// timeLayouts are tried in order when parsing provider timestamps. The boards
// APIs are inconsistent: Greenhouse uses RFC 3339 with an offset,
// SmartRecruiters sometimes drops the zone, Recruitee occasionally sends a
// bare date.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTime parses a provider timestamp and normalizes it to UTC.
// Returns nil when the value is empty or unparseable.
func parseTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		utc := t.UTC()
		return &utc
	}
	return nil
}

// capitalize upper-cases the first rune and lower-cases the rest. Used to turn
// an organization slug into a displayable company name when the upstream API
// omits one.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// joinNonEmpty joins the non-empty parts with ", ".
func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
