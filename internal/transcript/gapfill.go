// Package transcript turns a raw speech-to-text segment list into a
// contiguous subtitle track covering the whole media file.
package transcript

import (
	"time"

	"subcut/internal/subtitle"
)

// silenceThreshold is the smallest hole treated as real silence. Speech
// APIs report timestamps with millisecond jitter, so tiny seams between
// consecutive segments are left alone.
const silenceThreshold = 10 * time.Millisecond

// FillSilences returns a segment list that is contiguous, non-overlapping
// and jointly covers exactly [0, total], inserting empty-text segments
// wherever the input leaves silence uncovered. Original timestamps are
// preserved at full precision.
func FillSilences(segments []subtitle.Segment, total time.Duration) []subtitle.Segment {
	if len(segments) == 0 {
		return []subtitle.Segment{{StartTime: 0, EndTime: total, Text: ""}}
	}

	filled := make([]subtitle.Segment, 0, len(segments)*2)

	if segments[0].StartTime > silenceThreshold {
		filled = append(filled, subtitle.Segment{
			StartTime: 0,
			EndTime:   segments[0].StartTime,
			Text:      "",
		})
	}

	for i, seg := range segments {
		filled = append(filled, seg)
		if i+1 < len(segments) && segments[i+1].StartTime-seg.EndTime > silenceThreshold {
			filled = append(filled, subtitle.Segment{
				StartTime: seg.EndTime,
				EndTime:   segments[i+1].StartTime,
				Text:      "",
			})
		}
	}

	last := segments[len(segments)-1]
	if total-last.EndTime > silenceThreshold {
		filled = append(filled, subtitle.Segment{
			StartTime: last.EndTime,
			EndTime:   total,
			Text:      "",
		})
	}

	return filled
}

// Shift moves every segment by offset. Used when only a time window of the
// source was transcribed: chunk-local timestamps must be expressed in
// full-file coordinates before gap-filling against the full duration.
func Shift(segments []subtitle.Segment, offset time.Duration) []subtitle.Segment {
	if offset == 0 {
		return segments
	}

	shifted := make([]subtitle.Segment, len(segments))
	for i, seg := range segments {
		shifted[i] = subtitle.Segment{
			StartTime: seg.StartTime + offset,
			EndTime:   seg.EndTime + offset,
			Text:      seg.Text,
		}
	}
	return shifted
}
