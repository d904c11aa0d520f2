package config

// VideoSettings drive the burn-in re-encode.
type VideoSettings struct {
	Codec       string
	Preset      string
	CRF         int
	PixelFormat string
}

// AudioSettings drive the playback audio encode.
type AudioSettings struct {
	Codec      string
	Bitrate    string
	SampleRate int
}

// AnalysisAudioSettings drive the speech-recognition audio extraction:
// mono and narrowband, tuned for the transcription API rather than
// playback.
type AnalysisAudioSettings struct {
	Codec      string
	Channels   int
	SampleRate int
	Bitrate    string
}

// Profile is a named encode quality configuration.
type Profile struct {
	Name          string
	Video         VideoSettings
	Audio         AudioSettings
	AnalysisAudio AnalysisAudioSettings
}

// DefaultProfile is used when no profile is requested or the requested
// name is unknown.
const DefaultProfile = "medium"

var profiles = map[string]Profile{
	"high": {
		Name: "high",
		Video: VideoSettings{
			Codec:       "libx264",
			Preset:      "slow",
			CRF:         12,
			PixelFormat: "yuv420p",
		},
		Audio: AudioSettings{
			Codec:      "aac",
			Bitrate:    "320k",
			SampleRate: 48000,
		},
		AnalysisAudio: AnalysisAudioSettings{
			Codec:      "mp3",
			Channels:   1,
			SampleRate: 22050,
			Bitrate:    "128k",
		},
	},
	"medium": {
		Name: "medium",
		Video: VideoSettings{
			Codec:       "libx264",
			Preset:      "medium",
			CRF:         15,
			PixelFormat: "yuv420p",
		},
		Audio: AudioSettings{
			Codec:      "aac",
			Bitrate:    "256k",
			SampleRate: 48000,
		},
		AnalysisAudio: AnalysisAudioSettings{
			Codec:      "mp3",
			Channels:   1,
			SampleRate: 22050,
			Bitrate:    "96k",
		},
	},
	"low": {
		Name: "low",
		Video: VideoSettings{
			Codec:       "libx264",
			Preset:      "fast",
			CRF:         20,
			PixelFormat: "yuv420p",
		},
		Audio: AudioSettings{
			Codec:      "aac",
			Bitrate:    "192k",
			SampleRate: 44100,
		},
		AnalysisAudio: AnalysisAudioSettings{
			Codec:      "mp3",
			Channels:   1,
			SampleRate: 16000,
			Bitrate:    "64k",
		},
	},
}

// LookupProfile resolves a profile name. Unknown names fall back to the
// default profile; ok reports whether the name was recognized so callers
// can warn instead of failing.
func LookupProfile(name string) (p Profile, ok bool) {
	if p, ok := profiles[name]; ok {
		return p, true
	}
	return profiles[DefaultProfile], false
}

// ProfileNames lists the known profiles in quality order.
func ProfileNames() []string {
	return []string{"high", "medium", "low"}
}
