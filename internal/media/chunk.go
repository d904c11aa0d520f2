package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Chunk is one piece of a split audio file. StartTime/EndTime are in
// whole-file coordinates so transcription results can be shifted back.
type Chunk struct {
	Path      string
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
}

// SplitAudio cuts audioPath into consecutive stream-copied chunks of at
// most chunkDuration. Used when the analysis audio exceeds the upload
// limit of the transcription API.
func (f *FFmpeg) SplitAudio(ctx context.Context, audioPath string, chunkDuration time.Duration, outputDir string) ([]Chunk, error) {
	if chunkDuration <= 0 {
		return nil, fmt.Errorf("chunk duration must be positive, got %v", chunkDuration)
	}
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	total, err := f.Probe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get audio duration: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := FFmpegPath()
	if err != nil {
		return nil, err
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	ext := filepath.Ext(audioPath)

	var chunks []Chunk
	for i := 0; ; i++ {
		start := time.Duration(i) * chunkDuration
		if start >= total {
			break
		}
		end := start + chunkDuration
		if end > total {
			end = total
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunkPath := filepath.Join(outputDir,
			fmt.Sprintf("%s_chunk_%03d%s", baseName, i, ext))

		err := ffmpeg.Input(audioPath, ffmpeg.KwArgs{"ss": start.Seconds()}).
			Output(chunkPath, ffmpeg.KwArgs{
				"t": (end - start).Seconds(),
				"c": "copy",
			}).
			OverWriteOutput().
			SetFfmpegPath(ffmpegPath).
			Run()
		if err != nil {
			return nil, fmt.Errorf("failed to create chunk %d: %w", i, err)
		}

		chunks = append(chunks, Chunk{
			Path:      chunkPath,
			Index:     i,
			StartTime: start,
			EndTime:   end,
		})
	}

	return chunks, nil
}

// CleanupChunks removes all chunk files, keeping the last error.
func CleanupChunks(chunks []Chunk) error {
	var lastErr error
	for _, chunk := range chunks {
		if err := os.Remove(chunk.Path); err != nil && !os.IsNotExist(err) {
			lastErr = err
		}
	}
	return lastErr
}
