package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"subcut/internal/config"
	"subcut/internal/media"
)

var extractCmd = &cobra.Command{
	Use:   "extract [video_file]",
	Short: "Extract speech-analysis audio from a video file",
	Long: `Extract the audio track of a video as the low-fidelity mono file the
transcription step consumes, using the profile's analysis settings.

A time window restricts extraction to a sub-range of the video.

Examples:
  subcut extract video.mp4
  subcut extract video.mp4 -o audio.mp3 --profile low
  subcut extract video.mp4 --window-start 1:30 --window-end 5:00`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().
		StringP("output", "o", "", "Output audio path (default: video name with the profile's codec extension)")
	extractCmd.Flags().
		String("profile", "", "Compression profile (high, medium, low)")
	extractCmd.Flags().
		String("window-start", "", "Extract from this time")
	extractCmd.Flags().
		String("window-end", "", "Extract up to this time")
}

func runExtract(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	ctx := context.Background()

	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", videoPath)
	}

	outputPath, _ := cmd.Flags().GetString("output")
	profileName, _ := cmd.Flags().GetString("profile")
	windowStart, _ := cmd.Flags().GetString("window-start")
	windowEnd, _ := cmd.Flags().GetString("window-end")

	if profileName == "" {
		profileName = cfg.Profile
	}
	profile, ok := config.LookupProfile(profileName)
	if !ok && profileName != "" {
		logger.Warnw("unknown compression profile, using default",
			"profile", profileName, "default", config.DefaultProfile)
	}

	window, err := parseWindow(windowStart, windowEnd)
	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) +
			"." + profile.AnalysisAudio.Codec
	}

	opts := media.AudioOptions{Settings: profile.AnalysisAudio}
	if window != nil {
		opts.Start = window.Start
		opts.Window = window.Duration()
	}

	logger.Infow("Extracting analysis audio",
		"video", videoPath,
		"output", outputPath,
		"profile", profileName,
	)

	if err := media.NewFFmpeg().ExtractAudio(ctx, videoPath, outputPath, opts); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Audio extracted successfully: %s\n", absOutput)

	return nil
}
