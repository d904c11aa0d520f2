package cli

import (
	"fmt"

	"subcut/internal/timecode"
	"subcut/internal/transcribe"
)

// parseWindow turns a pair of time flags into a transcription window.
// Both empty means the full file (nil window). An empty start means 0;
// an end is required whenever a window is requested.
func parseWindow(startStr, endStr string) (*transcribe.Window, error) {
	if startStr == "" && endStr == "" {
		return nil, nil
	}
	if endStr == "" {
		return nil, fmt.Errorf("--window-end is required when --window-start is set")
	}

	start, err := timecode.Parse(startStr)
	if err != nil {
		return nil, fmt.Errorf("invalid --window-start %q: %w", startStr, err)
	}
	end, err := timecode.Parse(endStr)
	if err != nil {
		return nil, fmt.Errorf("invalid --window-end %q: %w", endStr, err)
	}
	if end <= start {
		return nil, fmt.Errorf("window end %s must be after start %s",
			timecode.Format(end), timecode.Format(start))
	}
	return &transcribe.Window{Start: start, End: end}, nil
}
