// Package media wraps the external ffmpeg/ffprobe tools behind the small
// set of operations the pipeline needs: probing, stream-copy slicing,
// subtitle burn-in, concat joins, crops and analysis-audio extraction.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"subcut/internal/config"
)

// FFmpeg runs every operation through the resolved ffmpeg binaries.
type FFmpeg struct{}

// NewFFmpeg returns the default tool adapter.
func NewFFmpeg() *FFmpeg {
	return &FFmpeg{}
}

// BurnOptions configure the caption burn-in re-encode.
type BurnOptions struct {
	Profile  config.Profile
	Font     string
	FontSize int
}

// AudioOptions configure analysis-audio extraction. A zero Window means
// "until end of file"; a zero Start means "from the beginning".
type AudioOptions struct {
	Settings config.AnalysisAudioSettings
	Start    time.Duration
	Window   time.Duration
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe returns the duration of a media file.
func (f *FFmpeg) Probe(ctx context.Context, path string) (time.Duration, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return 0, fmt.Errorf("file not found: %s", path)
	}

	ffprobePath, err := FFprobePath()
	if err != nil {
		return 0, err
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out.Bytes(), &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var seconds float64
	if _, err := fmt.Sscanf(probe.Format.Duration, "%f", &seconds); err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// ExtractClip copies the [start, start+duration) slice of src into dst
// without re-encoding. Fast seek: -ss goes before the input.
func (f *FFmpeg) ExtractClip(ctx context.Context, src, dst string, start, duration time.Duration) error {
	ffmpegPath, err := FFmpegPath()
	if err != nil {
		return err
	}

	err = ffmpeg.Input(src, ffmpeg.KwArgs{"ss": start.Seconds()}).
		Output(dst, ffmpeg.KwArgs{
			"t": duration.Seconds(),
			"c": "copy",
		}).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()
	if err != nil {
		return fmt.Errorf("clip extraction failed: %w", err)
	}

	return nil
}

// BurnSubtitles re-encodes src with the captions from srtPath rendered
// on-screen, using the profile's encode settings.
func (f *FFmpeg) BurnSubtitles(ctx context.Context, src, srtPath, dst string, opts BurnOptions) error {
	ffmpegPath, err := FFmpegPath()
	if err != nil {
		return err
	}

	font := opts.Font
	if font == "" {
		font = "Arial"
	}
	size := opts.FontSize
	if size <= 0 {
		size = 24
	}

	filter := fmt.Sprintf(
		"subtitles=%s:force_style='FontSize=%d,FontName=%s,"+
			"PrimaryColour=&HFFFFFF&,OutlineColour=&H000000&,"+
			"BackColour=&H80000000&,Outline=2,Shadow=1,MarginV=20'",
		srtPath, size, font)

	v := opts.Profile.Video
	a := opts.Profile.Audio

	err = ffmpeg.Input(src).
		Output(dst, ffmpeg.KwArgs{
			"vf":      filter,
			"c:v":     v.Codec,
			"preset":  v.Preset,
			"crf":     v.CRF,
			"pix_fmt": v.PixelFormat,
			"c:a":     a.Codec,
			"b:a":     a.Bitrate,
			"ar":      a.SampleRate,
		}).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()
	if err != nil {
		return fmt.Errorf("subtitle burn-in failed: %w", err)
	}

	return nil
}

// Concat joins the clips listed in manifestPath (concat demuxer format)
// into dst with a stream-copy join.
func (f *FFmpeg) Concat(ctx context.Context, manifestPath, dst string) error {
	ffmpegPath, err := FFmpegPath()
	if err != nil {
		return err
	}

	err = ffmpeg.Input(manifestPath, ffmpeg.KwArgs{
		"f":    "concat",
		"safe": "0",
	}).
		Output(dst, ffmpeg.KwArgs{"c": "copy"}).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()
	if err != nil {
		return fmt.Errorf("concatenation failed: %w", err)
	}

	return nil
}

// ExtractAudio produces the narrowband mono audio file consumed by the
// speech-to-text API, optionally restricted to a time window of the source.
func (f *FFmpeg) ExtractAudio(ctx context.Context, src, dst string, opts AudioOptions) error {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", src)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := FFmpegPath()
	if err != nil {
		return err
	}

	s := opts.Settings
	kwargs := ffmpeg.KwArgs{
		"vn": "",
		"ac": s.Channels,
		"ar": s.SampleRate,
	}

	switch s.Codec {
	case "mp3":
		kwargs["acodec"] = "libmp3lame"
	case "aac":
		kwargs["acodec"] = "aac"
	default:
		kwargs["acodec"] = "libmp3lame"
	}
	if s.Bitrate != "" {
		kwargs["b:a"] = s.Bitrate
	}

	if opts.Start > 0 {
		kwargs["ss"] = opts.Start.Seconds()
	}
	if opts.Window > 0 {
		kwargs["t"] = opts.Window.Seconds()
	}

	err = ffmpeg.Input(src).
		Output(dst, kwargs).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()
	if err != nil {
		return fmt.Errorf("audio extraction failed: %w", err)
	}

	return nil
}

// CropProgressFunc receives staged progress while a crop runs: a
// percentage and a short human-readable message.
type CropProgressFunc func(percent int, message string)

// Crop copies the [start, start+duration) range of src into dst without
// re-encoding. Sources are normalized beforehand, so a stream copy keeps
// the operation fast and lossless. Progress is staged rather than
// per-frame: the copy finishes too quickly to meter.
func (f *FFmpeg) Crop(ctx context.Context, src, dst string, start, duration time.Duration, progress CropProgressFunc) error {
	if progress == nil {
		progress = func(int, string) {}
	}

	ffmpegPath, err := FFmpegPath()
	if err != nil {
		return err
	}

	progress(10, "starting crop")

	progress(20, "cropping")
	err = ffmpeg.Input(src, ffmpeg.KwArgs{"ss": start.Seconds()}).
		Output(dst, ffmpeg.KwArgs{
			"t":                 duration.Seconds(),
			"c:v":               "copy",
			"c:a":               "copy",
			"avoid_negative_ts": "make_zero",
			"movflags":          "+faststart",
		}).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()
	if err != nil {
		progress(0, "crop failed")
		return fmt.Errorf("crop failed: %w", err)
	}

	progress(100, "crop complete")
	return nil
}
