package app

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// WIB is Western Indonesia Time. Fixed offset, no DST.
var WIB = time.FixedZone("WIB", 7*60*60)

const TimestampLayout = "2006-01-02 15:04:05"

// NormalizeTimestamp parses a loosely formatted value, assuming UTC when it
// carries no zone, and renders it in WIB. Empty or unparsable input yields "".
func NormalizeTimestamp(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return ""
	}
	return t.In(WIB).Format(TimestampLayout)
}

// parseNormalized reads back a value produced by NormalizeTimestamp.
func parseNormalized(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(s), WIB)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
