package cli

import (
	"github.com/spf13/cobra"

	"subcut/internal/config"
	"subcut/internal/logging"
)

var (
	verbose    bool
	configPath string

	logger *logging.Logger
	cfg    config.Config
)

var rootCmd = &cobra.Command{
	Use:   "subcut",
	Short: "Segment-based subtitle renderer for videos",
	Long: `Subcut turns a video and a transcript into a subtitled video.

It transcribes speech to an editable per-segment CSV table, fills the
silent gaps, renders each segment with its caption burned in, and joins
the clips into one continuous output file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Path to subcut.toml (default: $SUBCUT_CONFIG or ./subcut.toml)")
}
