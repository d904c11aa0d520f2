package media

import (
	"errors"
	"os"
	"os/exec"
	"sync"
)

// BinaryPaths locates the external media tools.
type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	resolveOnce sync.Once
	resolveErr  error
	resolved    BinaryPaths
)

// Binaries resolves ffmpeg and ffprobe once per process. Explicit paths in
// SUBCUT_FFMPEG_PATH / SUBCUT_FFPROBE_PATH win; otherwise PATH is searched.
func Binaries() (BinaryPaths, error) {
	resolveOnce.Do(func() {
		resolved, resolveErr = resolve()
	})
	return resolved, resolveErr
}

// FFmpegPath returns the resolved ffmpeg binary.
func FFmpegPath() (string, error) {
	paths, err := Binaries()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

// FFprobePath returns the resolved ffprobe binary.
func FFprobePath() (string, error) {
	paths, err := Binaries()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

func resolve() (BinaryPaths, error) {
	ffmpegPath := os.Getenv("SUBCUT_FFMPEG_PATH")
	ffprobePath := os.Getenv("SUBCUT_FFPROBE_PATH")

	if ffmpegPath == "" {
		if found, err := exec.LookPath("ffmpeg"); err == nil {
			ffmpegPath = found
		}
	}
	if ffprobePath == "" {
		if found, err := exec.LookPath("ffprobe"); err == nil {
			ffprobePath = found
		}
	}

	if ffmpegPath == "" || ffprobePath == "" {
		return BinaryPaths{}, errors.New(
			"ffmpeg/ffprobe not found: install them or set SUBCUT_FFMPEG_PATH and SUBCUT_FFPROBE_PATH")
	}

	return BinaryPaths{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
}
