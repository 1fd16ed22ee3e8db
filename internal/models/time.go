package models

import "time"

// TimestampLayout renders UTC instants with millisecond precision so that
// lexical order matches chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp formats t in TimestampLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
