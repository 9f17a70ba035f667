package util

import (
	"strconv"
	"time"
)

// StampLayout is the timestamp layout of the persisted price log.
const StampLayout = "2006-01-02 15:04:05"

// FormatStamp renders t in loc using StampLayout.
func FormatStamp(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(StampLayout)
}

// ParseStamp parses a StampLayout timestamp in loc.
func ParseStamp(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(StampLayout, s, loc)
}

// ParseTime tries RFC3339, StampLayout (local time), and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := ParseStamp(s, time.Local); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}
