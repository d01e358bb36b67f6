package editor

import (
	"fmt"
	"time"
)

// TimeAgo renders t relative to now: "just now" under a minute, "<n>m ago"
// under an hour, and the local clock time otherwise.
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	default:
		return t.Local().Format(time.TimeOnly)
	}
}
