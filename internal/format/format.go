package format

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Percent rounds v and renders it as a whole percentage, e.g. 91.6 => "92%".
func Percent(v float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(v)))
}

// Date formats time in a locale-friendly short form.
func FmtDate(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	switch strings.ToLower(lang) {
	case "pt", "es":
		return t.Format("02/01/2006")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// Seconds renders a duration rounded up to whole seconds, e.g. "3s".
func Seconds(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	return fmt.Sprintf("%ds", int(math.Ceil(d.Seconds())))
}
