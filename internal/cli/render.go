package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"subcut/internal/media"
	"subcut/internal/pipeline"
	"subcut/internal/project"
	"subcut/internal/render"
	"subcut/internal/subtitle"
)

var renderCmd = &cobra.Command{
	Use:   "render [video_file] [subtitle_csv]",
	Short: "Render a video with burned-in subtitles from a CSV table",
	Long: `Render the video with each CSV row's text burned in over its time
range. Interior gaps in the table are filled first and the table is
written back, so the file on disk always matches the rendered output.

Each segment is cut from the source, re-encoded with its caption, and
the finished clips are joined losslessly into one file. A render for a
video/table pair that is already in progress is rejected immediately.

Examples:
  subcut render video.mp4 subtitles.csv
  subcut render video.mp4 subtitles.csv -o final.mp4 --profile high
  subcut render video.mp4 subtitles.csv --font "Helvetica" --font-size 28
  subcut render video.mp4 subtitles.csv --project 4f7c9a12-...`,
	Args: cobra.ExactArgs(2),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().
		StringP("output", "o", "", "Output video path (default: video name with _subtitled suffix)")
	renderCmd.Flags().
		String("profile", "", "Compression profile (high, medium, low)")
	renderCmd.Flags().
		String("font", "", "Subtitle font name")
	renderCmd.Flags().
		Int("font-size", 0, "Subtitle font size")
	renderCmd.Flags().
		String("project", "", "Project id to store a copy of the output in")
}

func runRender(cmd *cobra.Command, args []string) error {
	videoPath, tablePath := args[0], args[1]
	ctx := context.Background()

	for _, path := range []string{videoPath, tablePath} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
	}

	outputPath, _ := cmd.Flags().GetString("output")
	profileName, _ := cmd.Flags().GetString("profile")
	font, _ := cmd.Flags().GetString("font")
	fontSize, _ := cmd.Flags().GetInt("font-size")
	projectID, _ := cmd.Flags().GetString("project")

	if outputPath == "" {
		ext := filepath.Ext(videoPath)
		outputPath = strings.TrimSuffix(videoPath, ext) + "_subtitled" + ext
	}
	if profileName == "" {
		profileName = cfg.Profile
	}
	if font == "" {
		font = cfg.Font
	}
	if fontSize == 0 {
		fontSize = cfg.FontSize
	}

	orchestrator := pipeline.New(media.NewFFmpeg(), logger)
	job := &pipeline.Job{
		Source:    videoPath,
		TablePath: tablePath,
		Output:    outputPath,
		Profile:   profileName,
		Font:      font,
		FontSize:  fontSize,
		Sink: render.ProgressFunc(func(current, total int, seg subtitle.Segment) {
			logger.Infow("Rendered segment",
				"segment", current,
				"total", total,
				"start", seg.StartTime.String(),
			)
		}),
		OnState: func(s pipeline.State) {
			logger.Debugw("Render state changed", "state", s.String())
		},
	}

	logger.Infow("Starting render",
		"input", videoPath,
		"table", tablePath,
		"output", outputPath,
		"profile", profileName,
	)

	out, err := orchestrator.Run(ctx, job)
	if err != nil {
		if errors.Is(err, pipeline.ErrConflict) {
			return fmt.Errorf("a render for this video and table is already running")
		}
		return fmt.Errorf("render failed: %w", err)
	}

	if projectID != "" {
		store := project.NewStore(cfg.Workdir)
		p, err := store.Open(projectID)
		if err != nil {
			return fmt.Errorf("render finished but project lookup failed: %w", err)
		}
		stored, err := p.StoreOutput(out)
		if err != nil {
			return fmt.Errorf("render finished but storing into project failed: %w", err)
		}
		p.Meta.Profile = profileName
		if err := p.Save(); err != nil {
			return err
		}
		logger.Infow("Stored output in project", "project", projectID, "path", stored)
	}

	absOutput, _ := filepath.Abs(out)
	fmt.Printf("Render complete: %s\n", absOutput)

	return nil
}
