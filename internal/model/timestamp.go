package model

import (
	"strings"
	"time"
)

// TimestampLayout is RFC 3339 with a fixed nine-digit fraction. Record
// timestamps in this layout order correctly as plain strings.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTimestamp renders t in UTC with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// CompareTimestamps orders two record timestamps by instant, so records
// written with a trimmed fraction (RFC3339Nano) sort with the rest. Values
// that do not parse fall back to string order.
func CompareTimestamps(a, b string) int {
	ta, errA := time.Parse(time.RFC3339Nano, a)
	tb, errB := time.Parse(time.RFC3339Nano, b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return ta.Compare(tb)
}
