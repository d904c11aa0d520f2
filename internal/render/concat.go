package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Concatenator joins finished segment clips into one continuous file via
// the concat demuxer: a manifest listing every clip in order, then a
// stream-copy join. Concat failures are not retried; a missing or empty
// clip here means an upstream renderer defect.
type Concatenator struct {
	Encoder Encoder
}

// Concat joins clips (in the given order) into dst.
func (c *Concatenator) Concat(ctx context.Context, clips []string, dst string) error {
	if len(clips) == 0 {
		return fmt.Errorf("no clips to concatenate")
	}

	for i, clip := range clips {
		if !fileNonEmpty(clip) {
			return fmt.Errorf("clip %d (%s): %w", i+1, clip, ErrMissingArtifact)
		}
	}

	manifestPath := strings.TrimSuffix(dst, filepath.Ext(dst)) + "_list.txt"
	if err := os.WriteFile(manifestPath, []byte(Manifest(clips)), 0644); err != nil {
		return fmt.Errorf("writing concat manifest: %w", err)
	}
	defer os.Remove(manifestPath)

	if err := c.Encoder.Concat(ctx, manifestPath, dst); err != nil {
		return err
	}

	if !fileNonEmpty(dst) {
		return fmt.Errorf("concatenated output (%s): %w", dst, ErrMissingArtifact)
	}

	return nil
}

// Manifest renders the concat demuxer file list. Single quotes inside
// paths use the demuxer's '\'' escape.
func Manifest(clips []string) string {
	var sb strings.Builder
	for _, clip := range clips {
		escaped := strings.ReplaceAll(clip, `'`, `'\''`)
		sb.WriteString("file '")
		sb.WriteString(escaped)
		sb.WriteString("'\n")
	}
	return sb.String()
}
