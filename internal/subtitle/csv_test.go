package subtitle

import (
	"os"
	"strings"
	"testing"
	"time"
)

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	return string(data), err
}

func sec(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func TestSerialize(t *testing.T) {
	segments := []Segment{
		{StartTime: 0, EndTime: sec(2), Text: "hello"},
		{StartTime: sec(2), EndTime: sec(4.5), Text: `say "hi", now`},
	}

	got := Serialize(segments)
	want := "start,end,subtitles\n" +
		"0:00.000,0:02.000,\"hello\"\n" +
		"0:02.000,0:04.500,\"say \"\"hi\"\", now\"\n"

	if got != want {
		t.Errorf("Serialize() =\n%q\nwant\n%q", got, want)
	}
}

func TestParseCSVRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		segments []Segment
	}{
		{name: "empty table", segments: nil},
		{
			name: "plain text",
			segments: []Segment{
				{StartTime: 0, EndTime: sec(2), Text: "hello"},
				{StartTime: sec(2), EndTime: sec(4.5), Text: "world"},
			},
		},
		{
			name: "commas and quotes",
			segments: []Segment{
				{StartTime: 0, EndTime: sec(1.25), Text: `one, two, "three"`},
				{StartTime: sec(1.25), EndTime: sec(3), Text: `""`},
			},
		},
		{
			name: "utf8 and placeholder rows",
			segments: []Segment{
				{StartTime: 0, EndTime: sec(1), Text: "こんにちは、世界"},
				{StartTime: sec(1), EndTime: sec(2), Text: " "},
				{StartTime: sec(2), EndTime: sec(3), Text: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseCSV(strings.NewReader(Serialize(tt.segments)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(table.Segments) != len(tt.segments) {
				t.Fatalf("got %d segments, want %d", len(table.Segments), len(tt.segments))
			}
			for i, seg := range table.Segments {
				if seg != tt.segments[i] {
					t.Errorf("segment %d = %+v, want %+v", i, seg, tt.segments[i])
				}
			}
		})
	}
}

func TestParseCSVSkipsMalformedRows(t *testing.T) {
	input := "start,end,subtitles\n" +
		"0:00.000,0:02.000,\"ok\"\n" +
		"not a row\n" +
		"0:02.000,0:04.000,\"also ok\"\n"

	table, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(table.Segments) != 2 {
		t.Errorf("got %d segments, want 2", len(table.Segments))
	}
	if len(table.Skipped) != 1 || table.Skipped[0] != 3 {
		t.Errorf("Skipped = %v, want [3]", table.Skipped)
	}
}

func TestParseCSVBadTimecodeIsFatal(t *testing.T) {
	input := "start,end,subtitles\n" +
		"bogus:time,0:02.000,\"x\"\n"

	if _, err := ParseCSV(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for malformed timecode")
	}
}

func TestFillGaps(t *testing.T) {
	// matches the documented editing scenario: a half-second hole between
	// two rows gets one single-space placeholder row
	input := []Segment{
		{StartTime: 0, EndTime: sec(2), Text: "a"},
		{StartTime: sec(2.5), EndTime: sec(4), Text: "b"},
	}

	got := FillGaps(input)
	want := []Segment{
		{StartTime: 0, EndTime: sec(2), Text: "a"},
		{StartTime: sec(2), EndTime: sec(2.5), Text: " "},
		{StartTime: sec(2.5), EndTime: sec(4), Text: "b"},
	}

	if len(got) != len(want) {
		t.Fatalf("got %d segments, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFillGapsIdempotent(t *testing.T) {
	input := []Segment{
		{StartTime: 0, EndTime: sec(1), Text: "a"},
		{StartTime: sec(3), EndTime: sec(5), Text: "b"},
		{StartTime: sec(5), EndTime: sec(6), Text: "c"},
	}

	once := FillGaps(input)
	twice := FillGaps(once)

	if len(twice) != len(once) {
		t.Fatalf("second pass changed row count: %d -> %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("segment %d changed on second pass: %+v -> %+v", i, once[i], twice[i])
		}
	}
}

func TestFillGapsIgnoresSubEpsilonGaps(t *testing.T) {
	input := []Segment{
		{StartTime: 0, EndTime: sec(1), Text: "a"},
		{StartTime: sec(1) + time.Millisecond, EndTime: sec(2), Text: "b"},
	}

	if got := FillGaps(input); len(got) != 2 {
		t.Errorf("got %d segments, want 2 (1ms gap must not be filled)", len(got))
	}
}

func TestWriteClipSRT(t *testing.T) {
	path := t.TempDir() + "/caption.srt"

	if err := WriteClipSRT(path, "hello world", 2500*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := readFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}

	want := "1\n00:00:00,000 --> 00:00:02,500\nhello world\n\n"
	if data != want {
		t.Errorf("got %q, want %q", data, want)
	}
}
