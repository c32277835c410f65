package util

import "time"

// DisplayLayout is the naive local timestamp used in API payloads and CLI output.
const DisplayLayout = "2006-01-02 15:04:05"

// FormatLocal converts t to loc and renders it without zone information.
// A nil loc means the process local zone.
func FormatLocal(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DisplayLayout)
}
