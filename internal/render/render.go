// Package render produces the final subtitled video: one burned-in clip
// per segment, then a lossless concatenation.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"subcut/internal/config"
	"subcut/internal/media"
	"subcut/internal/retry"
	"subcut/internal/subtitle"
)

var (
	// ErrInvalidSegment reports a zero or negative duration segment.
	ErrInvalidSegment = errors.New("invalid segment duration")

	// ErrTransientEncode reports an external encode failure that
	// persisted through all retry attempts.
	ErrTransientEncode = errors.New("transient encode failure")

	// ErrMissingArtifact reports an expected file absent or empty at a
	// verification checkpoint.
	ErrMissingArtifact = errors.New("missing or empty artifact")
)

// Encoder is the slice of the media layer the renderer drives.
type Encoder interface {
	ExtractClip(ctx context.Context, src, dst string, start, duration time.Duration) error
	BurnSubtitles(ctx context.Context, src, srtPath, dst string, opts media.BurnOptions) error
	Concat(ctx context.Context, manifestPath, dst string) error
}

// ProgressSink receives one notification per finished segment.
type ProgressSink interface {
	Progress(current, total int, seg subtitle.Segment)
}

// ProgressFunc adapts a function to the ProgressSink interface.
type ProgressFunc func(current, total int, seg subtitle.Segment)

// Progress calls f.
func (f ProgressFunc) Progress(current, total int, seg subtitle.Segment) {
	f(current, total, seg)
}

// nopSink drops progress events.
type nopSink struct{}

func (nopSink) Progress(int, int, subtitle.Segment) {}

// Renderer renders segments strictly in order. Each segment is extracted
// with a stream copy, re-encoded with its caption burned in, verified and
// reported before the next one starts.
type Renderer struct {
	Encoder  Encoder
	Profile  config.Profile
	Font     string
	FontSize int

	// Retry wraps the extract+burn pair of each segment.
	Retry retry.Policy
}

// NewRenderer returns a renderer with the default retry policy.
func NewRenderer(enc Encoder, profile config.Profile) *Renderer {
	return &Renderer{
		Encoder: enc,
		Profile: profile,
		Retry:   retry.Default(),
	}
}

// RenderSegments produces one finished clip per segment inside workDir
// and returns the ordered clip paths. Per-segment temporaries (the
// stream-copied slice and the single-caption SRT) are deleted as soon as
// the segment succeeds; on failure the failing segment's partial output
// is removed before the error propagates. Already finished clips are
// kept: the caller owns workDir and removes it as a whole.
func (r *Renderer) RenderSegments(ctx context.Context, source string, segments []subtitle.Segment, workDir string, sink ProgressSink) ([]string, error) {
	if sink == nil {
		sink = nopSink{}
	}

	clips := make([]string, 0, len(segments))
	for i, seg := range segments {
		duration := seg.Duration()
		if duration <= 0 {
			return nil, fmt.Errorf("segment %d (%s to %s): %w",
				i+1, seg.StartTime, seg.EndTime, ErrInvalidSegment)
		}

		tempClip := filepath.Join(workDir, fmt.Sprintf("temp_clip_%03d.mp4", i))
		srtPath := filepath.Join(workDir, fmt.Sprintf("segment_%03d.srt", i))
		clipPath := filepath.Join(workDir, fmt.Sprintf("clip_%03d.mp4", i))

		// caption timing is clip-local: [0, duration)
		if err := subtitle.WriteClipSRT(srtPath, seg.Text, duration); err != nil {
			return nil, fmt.Errorf("segment %d: writing caption: %w", i+1, err)
		}

		err := r.Retry.Do(ctx, func() error {
			if err := r.Encoder.ExtractClip(ctx, source, tempClip, seg.StartTime, duration); err != nil {
				removeIfExists(clipPath, tempClip)
				return err
			}
			if err := r.Encoder.BurnSubtitles(ctx, tempClip, srtPath, clipPath, media.BurnOptions{
				Profile:  r.Profile,
				Font:     r.Font,
				FontSize: r.FontSize,
			}); err != nil {
				removeIfExists(clipPath, tempClip)
				return err
			}
			if !fileNonEmpty(clipPath) {
				removeIfExists(clipPath, tempClip)
				return fmt.Errorf("clip %d produced no output", i+1)
			}
			return nil
		})
		if err != nil {
			removeIfExists(clipPath, tempClip, srtPath)
			return nil, fmt.Errorf("segment %d encode: %w", i+1,
				fmt.Errorf("%w: %w", ErrTransientEncode, err))
		}

		removeIfExists(tempClip, srtPath)
		clips = append(clips, clipPath)

		sink.Progress(i+1, len(segments), seg)
	}

	return clips, nil
}

func removeIfExists(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			os.Remove(p)
		}
	}
}

func fileNonEmpty(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}
