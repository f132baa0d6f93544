package timex

import "time"

// The local store and the mirror wire format both carry timestamps as unix
// milliseconds.

func ToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
