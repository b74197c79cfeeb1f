package serve

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

const sizeSuffixes = "kMGTPE"

// FormatSize renders a byte count with decimal (base 1000) units, e.g. "512 B",
// "1.00 kB", "2.50 MB". A value is promoted to the next unit once it reaches
// 999950 so that rounding never yields "1000.00".
func FormatSize(bytes uint64) string {
	if bytes < 1000 {
		return fmt.Sprintf("%d B", bytes)
	}

	i := 0
	for bytes >= 999_950 {
		bytes /= 1000
		i++
	}

	return fmt.Sprintf("%.2f %cB", float64(bytes)/1000.0, sizeSuffixes[i])
}

// FormatAge renders the time elapsed since an event as "3 minutes ago".
func FormatAge(elapsed time.Duration) string {
	if elapsed < 0 {
		elapsed = 0
	}
	now := time.Now()
	return humanize.RelTime(now.Add(-elapsed), now, "ago", "from now")
}
