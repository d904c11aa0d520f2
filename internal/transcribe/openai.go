package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"subcut/internal/media"
	"subcut/internal/subtitle"
)

// OpenAITranscriber calls the OpenAI audio transcription API (Whisper).
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

// segment from a Whisper verbose_json response
type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// verbose_json response structure
type whisperVerboseResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
}

func NewOpenAITranscriber(ctx context.Context, apiKey string, opts Options) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// Transcribe sends a single audio file to the API and returns timed
// segments with millisecond precision.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	duration, _ := media.NewFFmpeg().Probe(ctx, audioPath)

	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	}

	if t.options.Language != "" {
		params.Language = openai.String(t.options.Language)
	}
	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	result, err := parseVerboseJSONResponse(resp.RawJSON())
	if err != nil {
		// degrade to a single segment spanning the audio rather than
		// losing the text
		return fallbackResult(resp.Text, duration, t.options.Language), nil
	}

	if result.Language == "" {
		result.Language = t.options.Language
	}
	return result, nil
}

// TranscribeChunks transcribes split audio on a bounded worker pool.
func (t *OpenAITranscriber) TranscribeChunks(ctx context.Context, chunks []media.Chunk, concurrency int) (*Result, error) {
	return transcribeChunks(ctx, t, chunks, concurrency)
}

// fallbackResult wraps a transcript with no usable timing in a single
// segment spanning the whole audio, so gap-filling and rendering still
// see a well-formed table.
func fallbackResult(text string, duration time.Duration, language string) *Result {
	text = strings.TrimSpace(text)
	return &Result{
		Text: text,
		Segments: []subtitle.Segment{{
			StartTime: 0,
			EndTime:   duration,
			Text:      text,
		}},
		Language: language,
		Duration: duration,
	}
}

// parseVerboseJSONResponse decodes a Whisper verbose_json payload.
// Segments with empty text are dropped; the gap-filler reinserts blanks
// where silence belongs.
func parseVerboseJSONResponse(rawJSON string) (*Result, error) {
	if rawJSON == "" {
		return nil, fmt.Errorf("empty response")
	}

	var verboseResp whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &verboseResp); err != nil {
		return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}

	result := &Result{
		Text:     strings.TrimSpace(verboseResp.Text),
		Language: verboseResp.Language,
		Duration: time.Duration(verboseResp.Duration * float64(time.Second)),
	}

	if len(verboseResp.Segments) == 0 {
		if result.Text == "" {
			return nil, fmt.Errorf("no segments or text in response")
		}
		result.Segments = []subtitle.Segment{{
			StartTime: 0,
			EndTime:   result.Duration,
			Text:      result.Text,
		}}
		return result, nil
	}

	for _, seg := range verboseResp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		result.Segments = append(result.Segments, subtitle.Segment{
			StartTime: time.Duration(seg.Start * float64(time.Second)),
			EndTime:   time.Duration(seg.End * float64(time.Second)),
			Text:      text,
		})
	}

	return result, nil
}
