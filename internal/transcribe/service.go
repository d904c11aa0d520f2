package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"subcut/internal/config"
	"subcut/internal/media"
	"subcut/internal/retry"
	"subcut/internal/subtitle"
	"subcut/internal/transcript"
)

// Window restricts transcription to a sub-range of the source file.
type Window struct {
	Start time.Duration
	End   time.Duration
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return w.End - w.Start
}

// AudioTools is the slice of the media layer the service needs.
type AudioTools interface {
	Probe(ctx context.Context, path string) (time.Duration, error)
	ExtractAudio(ctx context.Context, src, dst string, opts media.AudioOptions) error
	SplitAudio(ctx context.Context, audioPath string, chunkDuration time.Duration, outputDir string) ([]media.Chunk, error)
}

// Service runs the full video-to-transcript flow: analysis-audio
// extraction, optional chunking for large files, the speech-to-text call,
// window offset correction and silence gap-filling. Its output covers
// [0, source duration] contiguously.
type Service struct {
	Tools       AudioTools
	Transcriber Transcriber

	// ChunkDuration splits audio above MaxUploadBytes; zero values take
	// the defaults (5 minutes, 10 MiB).
	ChunkDuration  time.Duration
	MaxUploadBytes int64
	Concurrency    int

	// Retry wraps the audio extraction step.
	Retry retry.Policy
}

// NewService wires the default knobs from the configuration.
func NewService(tools AudioTools, t Transcriber, cfg config.Config) *Service {
	return &Service{
		Tools:          tools,
		Transcriber:    t,
		ChunkDuration:  time.Duration(cfg.ChunkMinutes) * time.Minute,
		MaxUploadBytes: int64(cfg.MaxUploadMiB) << 20,
		Concurrency:    cfg.Concurrency,
		Retry:          retry.Default(),
	}
}

// TranscribeVideo transcribes videoPath (or the given window of it) and
// returns a gap-free segment list in full-file coordinates.
func (s *Service) TranscribeVideo(ctx context.Context, videoPath string, window *Window, analysis config.AnalysisAudioSettings) (*Result, error) {
	if window != nil && window.Duration() <= 0 {
		return nil, fmt.Errorf("invalid time window: %v to %v", window.Start, window.End)
	}

	total, err := s.Tools.Probe(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get video duration: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "subcut-transcribe-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	audioPath := filepath.Join(tempDir, "audio."+analysis.Codec)

	opts := media.AudioOptions{Settings: analysis}
	if window != nil {
		opts.Start = window.Start
		opts.Window = window.Duration()
	}

	err = s.Retry.Do(ctx, func() error {
		if err := s.Tools.ExtractAudio(ctx, videoPath, audioPath, opts); err != nil {
			os.Remove(audioPath)
			return err
		}
		info, err := os.Stat(audioPath)
		if err != nil || info.Size() == 0 {
			os.Remove(audioPath)
			return fmt.Errorf("audio extraction produced no output")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("audio extraction failed: %w", err)
	}

	result, err := s.transcribeAudio(ctx, audioPath, tempDir)
	if err != nil {
		return nil, err
	}

	segments := result.Segments
	if window != nil {
		// chunk-local timestamps become full-file coordinates
		segments = transcript.Shift(segments, window.Start)
	}
	result.Segments = transcript.FillSilences(segments, total)
	result.Duration = total

	return result, nil
}

// transcribeAudio picks the single-shot or chunked path by file size.
func (s *Service) transcribeAudio(ctx context.Context, audioPath, tempDir string) (*Result, error) {
	maxBytes := s.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}

	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat audio file: %w", err)
	}

	if info.Size() <= maxBytes {
		return s.Transcriber.Transcribe(ctx, audioPath)
	}

	chunkDur := s.ChunkDuration
	if chunkDur <= 0 {
		chunkDur = 5 * time.Minute
	}

	chunks, err := s.Tools.SplitAudio(ctx, audioPath, chunkDur, filepath.Join(tempDir, "chunks"))
	if err != nil {
		return nil, fmt.Errorf("failed to split audio: %w", err)
	}
	defer media.CleanupChunks(chunks)

	if ct, ok := s.Transcriber.(ChunkTranscriber); ok {
		return ct.TranscribeChunks(ctx, chunks, s.Concurrency)
	}

	// provider without chunk support: transcribe sequentially
	merged := &Result{}
	for _, chunk := range chunks {
		res, err := s.Transcriber.Transcribe(ctx, chunk.Path)
		if err != nil {
			return nil, fmt.Errorf("chunk %d failed: %w", chunk.Index, err)
		}
		for _, seg := range res.Segments {
			merged.Segments = append(merged.Segments, subtitle.Segment{
				StartTime: seg.StartTime + chunk.StartTime,
				EndTime:   seg.EndTime + chunk.StartTime,
				Text:      seg.Text,
			})
		}
		if res.Text != "" {
			if merged.Text != "" {
				merged.Text += " "
			}
			merged.Text += res.Text
		}
	}
	if len(chunks) > 0 {
		merged.Duration = chunks[len(chunks)-1].EndTime
	}
	return merged, nil
}
