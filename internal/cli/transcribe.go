package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"subcut/internal/config"
	"subcut/internal/media"
	"subcut/internal/subtitle"
	"subcut/internal/transcribe"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [video_file]",
	Short: "Transcribe a video into an editable subtitle CSV",
	Long: `Transcribe the speech in a video file and write a per-segment subtitle
table as CSV (start,end,subtitles).

Audio is first extracted with the profile's speech-analysis settings;
files above the upload limit are split into chunks and transcribed in
parallel. Silent stretches become empty rows so the table covers the
whole file. A time window restricts transcription to a sub-range of the
video; row timestamps stay in full-file coordinates.

Examples:
  subcut transcribe video.mp4
  subcut transcribe video.mp4 -o subtitles.csv
  subcut transcribe video.mp4 --provider gemini --api-key YOUR_KEY
  subcut transcribe video.mp4 --window-start 1:30 --window-end 5:00`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)

	transcribeCmd.Flags().
		StringP("output", "o", "", "Output CSV path (default: video name with .csv)")
	transcribeCmd.Flags().
		String("provider", "", "Transcription provider (openai, gemini)")
	transcribeCmd.Flags().
		StringP("api-key", "k", "", "Provider API key (or set the configured env var)")
	transcribeCmd.Flags().
		String("model", "", "Provider model override")
	transcribeCmd.Flags().
		StringP("language", "l", "", "Language code hint (e.g., en, es, fr)")
	transcribeCmd.Flags().
		String("profile", "", "Compression profile for analysis audio (high, medium, low)")
	transcribeCmd.Flags().
		String("window-start", "", "Transcribe from this time (e.g., 1:30 or 90.5)")
	transcribeCmd.Flags().
		String("window-end", "", "Transcribe up to this time")
	transcribeCmd.Flags().
		IntP("chunk-duration", "d", 0, "Chunk duration in minutes for large audio")
	transcribeCmd.Flags().
		Int("concurrency", 0, "Parallel transcription workers for chunked audio")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	ctx := context.Background()

	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", videoPath)
	}
	if !media.IsMediaFile(videoPath) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(videoPath))
	}

	outputPath, _ := cmd.Flags().GetString("output")
	providerStr, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	language, _ := cmd.Flags().GetString("language")
	profileName, _ := cmd.Flags().GetString("profile")
	windowStart, _ := cmd.Flags().GetString("window-start")
	windowEnd, _ := cmd.Flags().GetString("window-end")
	chunkMinutes, _ := cmd.Flags().GetInt("chunk-duration")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	if providerStr == "" {
		providerStr = cfg.Provider
	}
	provider := transcribe.Provider(strings.ToLower(providerStr))

	if apiKey == "" {
		apiKey = os.Getenv(apiKeyEnv(provider))
	}
	if apiKey == "" {
		return fmt.Errorf("%s API key is required: use --api-key or set %s",
			provider, apiKeyEnv(provider))
	}

	window, err := parseWindow(windowStart, windowEnd)
	if err != nil {
		return err
	}

	if profileName == "" {
		profileName = cfg.Profile
	}
	profile, ok := config.LookupProfile(profileName)
	if !ok && profileName != "" {
		logger.Warnw("unknown compression profile, using default",
			"profile", profileName, "default", config.DefaultProfile)
	}

	if outputPath == "" {
		outputPath = strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".csv"
	}

	transcriber, err := transcribe.Factory(ctx, provider, apiKey, transcribe.Options{
		Language: language,
		Model:    model,
	})
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	svc := transcribe.NewService(media.NewFFmpeg(), transcriber, cfg)
	if chunkMinutes > 0 {
		svc.ChunkDuration = time.Duration(chunkMinutes) * time.Minute
	}
	if concurrency > 0 {
		svc.Concurrency = concurrency
	}

	logger.Infow("Starting transcription",
		"input", videoPath,
		"output", outputPath,
		"provider", string(provider),
	)

	result, err := svc.TranscribeVideo(ctx, videoPath, window, profile.AnalysisAudio)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()
	if err := subtitle.WriteCSV(f, result.Segments); err != nil {
		return fmt.Errorf("failed to write subtitle table: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitle table written: %s\n", absOutput)
	fmt.Printf("  Segments: %d\n", len(result.Segments))
	fmt.Printf("  Duration: %s\n", result.Duration.String())

	return nil
}

// apiKeyEnv picks the environment variable for the provider. The
// configured name wins unless it is the default for a different
// provider.
func apiKeyEnv(provider transcribe.Provider) string {
	if cfg.APIKeyEnv != "" && cfg.APIKeyEnv != "OPENAI_API_KEY" {
		return cfg.APIKeyEnv
	}
	if provider == transcribe.ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}
