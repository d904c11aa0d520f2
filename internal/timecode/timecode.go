// Package timecode converts between human time strings and durations.
//
// The canonical form is "M:SS.mmm" (minutes unbounded, seconds zero-padded,
// exactly three fractional digits). The parser additionally accepts
// "H:MM:SS[.mmm]" and plain "SS[.mmm]".
package timecode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidFormat reports a malformed time string.
var ErrInvalidFormat = errors.New("invalid time format")

// Parse converts a time string to a duration.
//
// An empty string parses to zero: callers treat absence as "start of media"
// or "unbounded". Anything else must be a valid 1, 2 or 3 part time; a
// fractional component is only allowed on the seconds field.
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	// all parts except the last are whole hours/minutes
	var total float64
	for _, p := range parts[:len(parts)-1] {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
		}
		total = total*60 + float64(n)
	}

	sec, err := strconv.ParseFloat(strings.TrimSpace(parts[len(parts)-1]), 64)
	if err != nil || sec < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	total = total*60 + sec
	return time.Duration(total * float64(time.Second)).Round(time.Millisecond), nil
}

// Format renders a duration in the canonical "M:SS.mmm" form.
//
// No hour component is ever emitted: Format(1h1m1s) == "61:01.000". The
// parser accepts hour-form input, so round-tripping still holds.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	ms := int64(d.Round(time.Millisecond) / time.Millisecond)
	minutes := ms / 60_000
	ms %= 60_000

	return fmt.Sprintf("%d:%02d.%03d", minutes, ms/1000, ms%1000)
}

// FromSeconds converts float seconds (as produced by speech-to-text APIs
// and ffprobe) to a duration without rounding away millisecond precision.
func FromSeconds(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

// Seconds converts a duration to float seconds for ffmpeg arguments.
func Seconds(d time.Duration) float64 {
	return d.Seconds()
}
