package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"subcut/internal/timecode"
)

// Header is the fixed CSV header row.
const Header = "start,end,subtitles"

// gapEpsilon is the smallest interior gap FillGaps will fill.
const gapEpsilon = time.Millisecond

// WriteCSV serializes segments as the subtitle interchange CSV: one header
// line, then "start,end,\"text\"" per segment. The text field is always
// double-quoted with embedded quotes doubled; times use the canonical
// timecode form.
func WriteCSV(w io.Writer, segments []Segment) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(Header + "\n"); err != nil {
		return err
	}

	for _, seg := range segments {
		text := strings.ReplaceAll(seg.Text, `"`, `""`)
		if _, err := fmt.Fprintf(bw, "%s,%s,\"%s\"\n",
			timecode.Format(seg.StartTime),
			timecode.Format(seg.EndTime),
			text); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Serialize renders segments as a CSV string.
func Serialize(segments []Segment) string {
	var sb strings.Builder
	_ = WriteCSV(&sb, segments)
	return sb.String()
}

// ParseCSV reads a subtitle table. Rows with a field count other than
// three are skipped (recorded in Table.Skipped) rather than aborting;
// malformed time strings are fatal.
func ParseCSV(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	table := &Table{}
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		// header row
		if lineNo == 1 {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := splitLine(line)
		if len(fields) != 3 {
			table.Skipped = append(table.Skipped, lineNo)
			continue
		}

		start, err := timecode.Parse(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		end, err := timecode.Parse(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		table.Segments = append(table.Segments, Segment{
			StartTime: start,
			EndTime:   end,
			Text:      fields[2],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading subtitle table: %w", err)
	}

	return table, nil
}

// splitLine is a small state-machine CSV splitter: quoted fields, doubled
// quote escaping, commas inside quotes. Unquoted fields are trimmed;
// quoted content is preserved verbatim so the single-space gap placeholder
// survives a round trip.
func splitLine(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false
	quoted := false

	runes := []rune(line)
	flush := func() {
		f := current.String()
		if !quoted {
			f = strings.TrimSpace(f)
		}
		fields = append(fields, f)
		current.Reset()
		quoted = false
	}

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
				quoted = true
			}
		case c == ',' && !inQuotes:
			flush()
		default:
			current.WriteRune(c)
		}
	}
	flush()

	return fields
}

// FillGaps inserts a single-space placeholder row into every interior gap
// wider than one millisecond, preserving existing rows untouched. It has
// no notion of the table's total bounds: leading and trailing silence are
// the transcript gap-filler's job. Idempotent.
func FillGaps(segments []Segment) []Segment {
	if len(segments) == 0 {
		return nil
	}

	out := make([]Segment, 0, len(segments))
	for i, seg := range segments {
		out = append(out, seg)
		if i+1 >= len(segments) {
			break
		}
		if segments[i+1].StartTime-seg.EndTime > gapEpsilon {
			out = append(out, Segment{
				StartTime: seg.EndTime,
				EndTime:   segments[i+1].StartTime,
				Text:      " ",
			})
		}
	}

	return out
}
