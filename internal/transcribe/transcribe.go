package transcribe

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"subcut/internal/media"
	"subcut/internal/subtitle"
)

// Result is the raw output of a speech-to-text call: timed segments plus
// the flat transcript text.
type Result struct {
	Text     string
	Segments []subtitle.Segment
	Language string
	Duration time.Duration
}

// Transcriber converts a single audio file into a Result.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

// ChunkTranscriber additionally handles audio that was split into chunks,
// merging chunk-local timestamps back into whole-file coordinates.
type ChunkTranscriber interface {
	Transcriber
	TranscribeChunks(ctx context.Context, chunks []media.Chunk, concurrency int) (*Result, error)
}

// Provider selects a transcription service.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// Options tune a transcription request.
type Options struct {
	Language string // source language of the audio
	Model    string
	Prompt   string
}

// Factory creates a transcriber for the given provider.
func Factory(ctx context.Context, provider Provider, apiKey string, opts Options) (Transcriber, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// result of transcribing one chunk
type chunkResult struct {
	Index    int
	Text     string
	Segments []subtitle.Segment
	Error    error
}

// transcribeChunks fans chunk transcriptions out over a bounded worker
// pool, shifts each chunk's timestamps by its offset and merges the
// results in index order.
func transcribeChunks(ctx context.Context, t Transcriber, chunks []media.Chunk, concurrency int) (*Result, error) {
	if len(chunks) == 0 {
		return &Result{}, nil
	}
	if concurrency <= 0 {
		concurrency = 3
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workChan := make(chan media.Chunk)
	resultChan := make(chan chunkResult, len(chunks))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range workChan {
				if ctx.Err() != nil {
					return
				}

				res, err := t.Transcribe(ctx, chunk.Path)
				if err != nil {
					resultChan <- chunkResult{Index: chunk.Index, Error: err}
					cancel()
					continue
				}

				segments := make([]subtitle.Segment, len(res.Segments))
				for i, seg := range res.Segments {
					segments[i] = subtitle.Segment{
						StartTime: seg.StartTime + chunk.StartTime,
						EndTime:   seg.EndTime + chunk.StartTime,
						Text:      seg.Text,
					}
				}
				resultChan <- chunkResult{
					Index:    chunk.Index,
					Text:     res.Text,
					Segments: segments,
				}
			}
		}()
	}

	go func() {
		defer close(workChan)
		for _, chunk := range chunks {
			select {
			case <-ctx.Done():
				return
			case workChan <- chunk:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var results []chunkResult
	var firstErr error
	for res := range resultChan {
		if res.Error != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("chunk %d failed: %w", res.Index, res.Error)
			}
			continue
		}
		results = append(results, res)
	}
	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	merged := &Result{Duration: chunks[len(chunks)-1].EndTime}
	for _, res := range results {
		merged.Segments = append(merged.Segments, res.Segments...)
		if res.Text != "" {
			if merged.Text != "" {
				merged.Text += " "
			}
			merged.Text += res.Text
		}
	}

	return merged, nil
}
