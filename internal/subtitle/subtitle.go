package subtitle

import (
	"time"
)

// Segment is a single timed caption. Text may be empty (silence) or a
// single space (gap row inserted by FillGaps).
type Segment struct {
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// Duration returns the segment length.
func (s Segment) Duration() time.Duration {
	return s.EndTime - s.StartTime
}

// Table is an ordered sequence of segments as stored in a subtitle CSV
// file. Rows that could not be parsed are recorded by line number in
// Skipped so callers can warn without aborting the whole parse.
type Table struct {
	Segments []Segment
	Skipped  []int
}
