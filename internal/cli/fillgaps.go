package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"subcut/internal/subtitle"
)

var fillgapsCmd = &cobra.Command{
	Use:   "fillgaps [subtitle_csv]",
	Short: "Fill interior gaps in a subtitle CSV table",
	Long: `Insert placeholder rows into a subtitle CSV wherever adjacent rows
leave a gap larger than one millisecond, then write the table back.

Running it again on an already gap-free table changes nothing.

Examples:
  subcut fillgaps subtitles.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runFillGaps,
}

func init() {
	rootCmd.AddCommand(fillgapsCmd)
}

func runFillGaps(cmd *cobra.Command, args []string) error {
	tablePath := args[0]

	f, err := os.Open(tablePath)
	if err != nil {
		return fmt.Errorf("failed to open subtitle table: %w", err)
	}
	table, err := subtitle.ParseCSV(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to parse subtitle table: %w", err)
	}
	for _, line := range table.Skipped {
		logger.Warnw("Skipped malformed row", "file", tablePath, "line", line)
	}

	filled := subtitle.FillGaps(table.Segments)
	inserted := len(filled) - len(table.Segments)

	if inserted > 0 {
		if err := os.WriteFile(tablePath, []byte(subtitle.Serialize(filled)), 0644); err != nil {
			return fmt.Errorf("failed to write subtitle table: %w", err)
		}
	}

	absPath, _ := filepath.Abs(tablePath)
	fmt.Printf("Gap fill complete: %s\n", absPath)
	fmt.Printf("  Rows: %d\n", len(filled))
	fmt.Printf("  Inserted: %d\n", inserted)

	return nil
}
