package mediainfo

// AudioTrack describes a single audio stream.
type AudioTrack struct {
	Codec       string `json:"codec"`
	Channels    int    `json:"channels"`
	SampleRate  int    `json:"sample_rate"`
	BitrateKbps int    `json:"bitrate_kbps"`
	Language    string `json:"language,omitempty"`
}

// SubtitleTrack describes an embedded subtitle stream or an external
// companion file.
type SubtitleTrack struct {
	Format   string `json:"format"`
	Language string `json:"language,omitempty"`
	Embedded bool   `json:"embedded"`
	// SourcePath is set for external companion files only.
	SourcePath string `json:"source_path,omitempty"`
}

// Properties is the canonical technical description of one video file.
// It is immutable once extracted; the scan task that produced it owns it
// until the record is handed to the store.
type Properties struct {
	Path            string  `json:"path"`
	SizeBytes       int64   `json:"size_bytes"`
	DurationSeconds float64 `json:"duration_seconds"`
	Container       string  `json:"container"`
	VideoCodec      string  `json:"video_codec"`
	VideoCodecTag   string  `json:"video_codec_tag,omitempty"`
	CodecTagCorrect bool    `json:"codec_tag_correct"`
	BitDepth        int     `json:"bit_depth"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	FrameRate       float64 `json:"frame_rate"`
	HDR             bool    `json:"hdr"`
	HDRFormat       string  `json:"hdr_format,omitempty"`
	FastStart       bool    `json:"fast_start"`

	AudioTracks    []AudioTrack    `json:"audio_tracks,omitempty"`
	SubtitleTracks []SubtitleTrack `json:"subtitle_tracks,omitempty"`
}

// mp4Family containers share the ISO base media file format box layout.
var mp4Family = map[string]struct{}{
	"MP4": {},
	"M4V": {},
	"MOV": {},
}

// IsMP4Family reports whether the container uses the ISO BMFF box layout.
func IsMP4Family(container string) bool {
	_, ok := mp4Family[container]
	return ok
}

// VideoBitrateMbps estimates the total stream bitrate in Mbps from file
// size and duration. Returns 0 when duration is unknown.
func (p Properties) VideoBitrateMbps() float64 {
	if p.DurationSeconds <= 0 || p.SizeBytes <= 0 {
		return 0
	}
	return float64(p.SizeBytes) * 8 / p.DurationSeconds / 1e6
}

// MaxAudioChannels returns the widest channel layout across audio tracks.
func (p Properties) MaxAudioChannels() int {
	max := 0
	for _, track := range p.AudioTracks {
		if track.Channels > max {
			max = track.Channels
		}
	}
	return max
}
