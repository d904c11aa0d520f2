package transcribe

import (
	"testing"
	"time"

	"subcut/internal/transcript"
)

func TestParseVerboseJSONResponse(t *testing.T) {
	tests := []struct {
		name      string
		rawJSON   string
		wantCount int
		wantErr   bool
	}{
		{
			name: "valid verbose_json with segments",
			rawJSON: `{
				"text": "Hello world. How are you today?",
				"segments": [
					{"start": 0.0, "end": 1.5, "text": "Hello world."},
					{"start": 1.5, "end": 3.0, "text": "How are you today?"}
				],
				"language": "en",
				"duration": 3.0
			}`,
			wantCount: 2,
		},
		{
			name: "no segments but has text",
			rawJSON: `{
				"text": "This is a transcription without segments.",
				"segments": [],
				"language": "en",
				"duration": 2.5
			}`,
			wantCount: 1,
		},
		{
			name: "null segments",
			rawJSON: `{
				"text": "Transcription text only.",
				"segments": null,
				"language": "en",
				"duration": 1.0
			}`,
			wantCount: 1,
		},
		{
			name: "empty text segments filtered out",
			rawJSON: `{
				"text": "Hello world",
				"segments": [
					{"start": 0.0, "end": 0.5, "text": ""},
					{"start": 0.5, "end": 1.5, "text": "Hello world"},
					{"start": 1.5, "end": 2.0, "text": "   "}
				],
				"language": "en",
				"duration": 2.0
			}`,
			wantCount: 1,
		},
		{name: "empty response", rawJSON: "", wantErr: true},
		{name: "invalid JSON", rawJSON: `{"text": "incomplete`, wantErr: true},
		{
			name: "no segments and no text",
			rawJSON: `{
				"text": "",
				"segments": [],
				"language": "en",
				"duration": 0
			}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVerboseJSONResponse(tt.rawJSON)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result.Segments) != tt.wantCount {
				t.Errorf("got %d segments, want %d", len(result.Segments), tt.wantCount)
			}
			for i, seg := range result.Segments {
				if seg.Text == "" {
					t.Errorf("segment %d has empty text", i)
				}
			}
		})
	}
}

func TestFallbackResultSpansAudioDuration(t *testing.T) {
	result := fallbackResult("  whole transcript  ", 10*time.Second, "en")

	if len(result.Segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(result.Segments))
	}
	seg := result.Segments[0]
	if seg.StartTime != 0 || seg.EndTime != 10*time.Second {
		t.Errorf("segment spans [%v, %v], want [0s, 10s]", seg.StartTime, seg.EndTime)
	}
	if seg.Duration() <= 0 {
		t.Error("fallback segment has no positive duration")
	}
	if seg.Text != "whole transcript" {
		t.Errorf("text = %q, want trimmed transcript", seg.Text)
	}
	if result.Duration != 10*time.Second {
		t.Errorf("duration = %v, want 10s", result.Duration)
	}

	// gap-filling an already full-cover fallback changes nothing
	filled := transcript.FillSilences(result.Segments, 10*time.Second)
	if len(filled) != 1 || filled[0] != seg {
		t.Errorf("silence fill altered full-cover fallback: %+v", filled)
	}
}

func TestParseVerboseJSONResponseTimestamps(t *testing.T) {
	rawJSON := `{
		"text": "Hello world. Goodbye.",
		"segments": [
			{"start": 1.5, "end": 3.0, "text": "Hello world."},
			{"start": 3.0, "end": 5.5, "text": "Goodbye."}
		],
		"language": "en",
		"duration": 5.5
	}`

	result, err := parseVerboseJSONResponse(rawJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(result.Segments))
	}

	if result.Segments[0].StartTime != 1500*time.Millisecond {
		t.Errorf("first start = %v, want 1.5s", result.Segments[0].StartTime)
	}
	if result.Segments[1].EndTime != 5500*time.Millisecond {
		t.Errorf("last end = %v, want 5.5s", result.Segments[1].EndTime)
	}
	if result.Duration != 5500*time.Millisecond {
		t.Errorf("duration = %v, want 5.5s", result.Duration)
	}
	if result.Language != "en" {
		t.Errorf("language = %q, want en", result.Language)
	}
}
