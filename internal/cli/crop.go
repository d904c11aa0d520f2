package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"subcut/internal/media"
	"subcut/internal/timecode"
)

var cropCmd = &cobra.Command{
	Use:   "crop [video_file]",
	Short: "Cut a time range out of a video without re-encoding",
	Long: `Copy the given time range of a video into a new file using a stream
copy, so the crop is fast and lossless.

Times accept H:MM:SS, M:SS, or plain seconds, each with optional
milliseconds. An empty start means the beginning of the file.

Examples:
  subcut crop video.mp4 --end 1:30
  subcut crop video.mp4 --start 0:45 --end 2:10.500 -o cut.mp4`,
	Args: cobra.ExactArgs(1),
	RunE: runCrop,
}

func init() {
	rootCmd.AddCommand(cropCmd)

	cropCmd.Flags().
		StringP("start", "s", "", "Start time (default: beginning of file)")
	cropCmd.Flags().
		StringP("end", "e", "", "End time (required)")
	cropCmd.Flags().
		StringP("output", "o", "", "Output video path (default: video name with _cropped suffix)")
	cropCmd.MarkFlagRequired("end")
}

func runCrop(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	ctx := context.Background()

	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", videoPath)
	}

	startStr, _ := cmd.Flags().GetString("start")
	endStr, _ := cmd.Flags().GetString("end")
	outputPath, _ := cmd.Flags().GetString("output")

	start, err := timecode.Parse(startStr)
	if err != nil {
		return fmt.Errorf("invalid --start %q: %w", startStr, err)
	}
	end, err := timecode.Parse(endStr)
	if err != nil {
		return fmt.Errorf("invalid --end %q: %w", endStr, err)
	}
	if end <= start {
		return fmt.Errorf("end time %s must be after start time %s",
			timecode.Format(end), timecode.Format(start))
	}

	if outputPath == "" {
		ext := filepath.Ext(videoPath)
		outputPath = strings.TrimSuffix(videoPath, ext) + "_cropped" + ext
	}

	logger.Infow("Cropping video",
		"input", videoPath,
		"output", outputPath,
		"start", timecode.Format(start),
		"end", timecode.Format(end),
	)

	onProgress := func(percent int, message string) {
		logger.Infow("Crop progress", "percent", percent, "message", message)
	}
	if err := media.NewFFmpeg().Crop(ctx, videoPath, outputPath, start, end-start, onProgress); err != nil {
		return fmt.Errorf("crop failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Crop complete: %s\n", absOutput)
	fmt.Printf("  Range: %s to %s\n", timecode.Format(start), timecode.Format(end))

	return nil
}
