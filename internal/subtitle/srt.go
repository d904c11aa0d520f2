package subtitle

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// WriteClipSRT writes an SRT file carrying a single caption timed
// [0, duration) relative to the clip it will be burned into. Segment
// renders burn one caption per extracted clip, so the cue is always
// clip-local rather than timed against the full source.
func WriteClipSRT(path, text string, duration time.Duration) error {
	var sb strings.Builder

	sb.WriteString("1\n")
	sb.WriteString(fmt.Sprintf("%s --> %s\n",
		formatSRTTime(0),
		formatSRTTime(duration)))
	sb.WriteString(text)
	sb.WriteString("\n\n")

	return os.WriteFile(path, []byte(sb.String()), 0644)
}

func formatSRTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
