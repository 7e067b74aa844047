package rating

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"reelcheck/internal/config"
	"reelcheck/internal/mediainfo"
)

// PlayMethod is the server-side work required for a client to play the
// file.
type PlayMethod string

const (
	DirectPlay PlayMethod = "direct_play"
	Remux      PlayMethod = "remux"
	Transcode  PlayMethod = "transcode"
)

var methodRank = map[PlayMethod]int{
	DirectPlay: 0,
	Remux:      1,
	Transcode:  2,
}

// worsen moves a disposition toward Transcode, never back.
func worsen(current, next PlayMethod) PlayMethod {
	if methodRank[next] > methodRank[current] {
		return next
	}
	return current
}

// Disposition is the per-client evaluation outcome.
type Disposition struct {
	Method   PlayMethod `json:"method"`
	Issues   []string   `json:"issues,omitempty"`
	Warnings []string   `json:"warnings,omitempty"`
}

// Result is the aggregate compatibility verdict for one file.
type Result struct {
	// Rating is the raw count of direct-play clients, an ordinal, not a
	// percentage.
	Rating int `json:"rating"`
	// Score is a 0-100 report score derived from configured penalties.
	Score           int                    `json:"score"`
	Label           string                 `json:"label"`
	DirectPlayCount int                    `json:"direct_play_count"`
	RemuxCount      int                    `json:"remux_count"`
	TranscodeCount  int                    `json:"transcode_count"`
	Clients         map[string]Disposition `json:"clients"`
	Issues          []string               `json:"issues,omitempty"`
	Recommendations []string               `json:"recommendations,omitempty"`
}

const (
	LabelOptimal = "Optimal"
	LabelGood    = "Good"
	LabelPoor    = "Poor"
)

type overrideKey struct {
	category string
	codec    string
	client   string
}

// Engine evaluates media properties against a support matrix. Safe for
// concurrent use; the matrix and overrides are read-only after
// construction and per-codec thresholds are cached under a lock.
type Engine struct {
	matrix          *Matrix
	overrides       map[overrideKey]SupportLevel
	enabled         []string
	cfg             config.Rating
	codecThresholds map[string]config.CodecThreshold

	mu         sync.Mutex
	thresholds map[string]thresholdSet
}

// NewEngine builds an Engine from the matrix and rating configuration.
// A nil matrix uses the built-in defaults; an empty enabled-client list
// enables every client the matrix names.
func NewEngine(matrix *Matrix, cfg config.Rating) *Engine {
	if matrix == nil {
		matrix = DefaultMatrix()
	}

	enabled := make([]string, 0, len(cfg.EnabledClients))
	for _, client := range cfg.EnabledClients {
		client = strings.ToLower(strings.TrimSpace(client))
		if client != "" {
			enabled = append(enabled, client)
		}
	}
	if len(enabled) == 0 {
		enabled = matrix.Clients()
	}
	sort.Strings(enabled)

	overrides := make(map[overrideKey]SupportLevel, len(cfg.Overrides))
	for _, o := range cfg.Overrides {
		key := overrideKey{
			category: strings.ToLower(strings.TrimSpace(o.Category)),
			codec:    strings.TrimSpace(o.Codec),
			client:   strings.ToLower(strings.TrimSpace(o.Client)),
		}
		overrides[key] = SupportLevel(strings.ToLower(strings.TrimSpace(o.Level)))
	}

	codecThresholds := make(map[string]config.CodecThreshold, len(cfg.CodecThresholds))
	for _, ct := range cfg.CodecThresholds {
		if codec := strings.TrimSpace(ct.Codec); codec != "" {
			codecThresholds[codec] = ct
		}
	}

	return &Engine{
		matrix:          matrix,
		overrides:       overrides,
		enabled:         enabled,
		cfg:             cfg,
		codecThresholds: codecThresholds,
		thresholds:      make(map[string]thresholdSet),
	}
}

// EnabledClients returns the evaluated client set in stable order.
func (e *Engine) EnabledClients() []string {
	out := make([]string, len(e.enabled))
	copy(out, e.enabled)
	return out
}

// Evaluate computes the compatibility result for props. Pure with
// respect to its inputs: identical properties yield identical results.
func (e *Engine) Evaluate(props mediainfo.Properties) Result {
	result := Result{
		Clients: make(map[string]Disposition, len(e.enabled)),
	}

	for _, client := range e.enabled {
		disposition := e.evaluateClient(client, props)
		result.Clients[client] = disposition
		switch disposition.Method {
		case DirectPlay:
			result.DirectPlayCount++
		case Remux:
			result.RemuxCount++
		case Transcode:
			result.TranscodeCount++
		}
	}

	result.Rating = result.DirectPlayCount
	result.Label = e.label(props, result.DirectPlayCount, result.RemuxCount)
	e.appendAdvisories(&result, props)
	return result
}

// evaluateClient applies the ordered evaluation steps for one client.
// Each step can only worsen the disposition.
func (e *Engine) evaluateClient(client string, props mediainfo.Properties) Disposition {
	d := Disposition{Method: DirectPlay}

	// Container.
	switch e.containerSupport(props.Container, client) {
	case Unsupported:
		d.Method = worsen(d.Method, Remux)
		d.Issues = append(d.Issues, fmt.Sprintf("%s container is not playable on %s", props.Container, client))
	case Partial:
		d.Method = worsen(d.Method, Remux)
		d.Warnings = append(d.Warnings, fmt.Sprintf("%s container has limited support on %s", props.Container, client))
	}

	// Video codec.
	videoKey := props.VideoCodec
	if props.BitDepth > 8 {
		videoKey = qualifiedCodecKey(props.VideoCodec, props.BitDepth)
	}
	switch e.videoSupport(props.VideoCodec, props.BitDepth, client) {
	case Unsupported:
		d.Method = worsen(d.Method, Transcode)
		d.Issues = append(d.Issues, fmt.Sprintf("%s video cannot be decoded on %s", videoKey, client))
	case Partial:
		d.Method = worsen(d.Method, Remux)
		d.Warnings = append(d.Warnings, fmt.Sprintf("%s video has limited support on %s", videoKey, client))
	}

	// Platform special cases.
	if e.matrix.HasProfile(client, ProfileIOS) {
		if props.VideoCodec == "H.265" && !mediainfo.IsMP4Family(props.Container) {
			d.Method = worsen(d.Method, Transcode)
			d.Issues = append(d.Issues, fmt.Sprintf("H.265 outside an MP4 container forces a transcode on %s", client))
		}
		if props.HDR {
			d.Warnings = append(d.Warnings, fmt.Sprintf("%s HDR plays natively on %s", hdrLabel(props), client))
		}
	} else if props.HDR {
		d.Warnings = append(d.Warnings, fmt.Sprintf("%s HDR may not tone-map correctly on %s", hdrLabel(props), client))
	}

	// Audio tracks.
	for _, track := range props.AudioTracks {
		switch e.audioSupport(track.Codec, client) {
		case Unsupported:
			d.Method = worsen(d.Method, Remux)
			d.Issues = append(d.Issues, fmt.Sprintf("%s audio is not playable on %s", track.Codec, client))
		case Partial:
			d.Warnings = append(d.Warnings, fmt.Sprintf("%s audio has limited support on %s", track.Codec, client))
		}
	}

	// Embedded subtitles. External companions never affect disposition.
	for _, track := range props.SubtitleTracks {
		if !track.Embedded {
			continue
		}
		switch e.matrix.SubtitleSupport(track.Format, props.Container) {
		case Unsupported:
			d.Issues = append(d.Issues, fmt.Sprintf("%s subtitles in %s will be dropped or burned in", track.Format, props.Container))
		case Partial:
			d.Warnings = append(d.Warnings, fmt.Sprintf("%s subtitles in %s may not render on all players", track.Format, props.Container))
		}
	}

	// An issue with the method still at DirectPlay can only come from
	// the subtitle step; burning subtitles in means a transcode.
	if len(d.Issues) > 0 && d.Method == DirectPlay {
		d.Method = Transcode
	}

	return d
}

func hdrLabel(props mediainfo.Properties) string {
	if props.HDRFormat != "" {
		return props.HDRFormat
	}
	return "HDR"
}

func (e *Engine) containerSupport(container, client string) SupportLevel {
	if level, ok := e.overrides[overrideKey{category: "container", codec: container, client: client}]; ok {
		return level
	}
	return e.matrix.ContainerSupport(container, client)
}

func (e *Engine) videoSupport(codec string, bitDepth int, client string) SupportLevel {
	if bitDepth > 8 {
		if level, ok := e.overrides[overrideKey{category: "video", codec: qualifiedCodecKey(codec, bitDepth), client: client}]; ok {
			return level
		}
	}
	if level, ok := e.overrides[overrideKey{category: "video", codec: codec, client: client}]; ok {
		return level
	}
	return e.matrix.VideoSupport(codec, bitDepth, client)
}

func (e *Engine) audioSupport(codec, client string) SupportLevel {
	if level, ok := e.overrides[overrideKey{category: "audio", codec: codec, client: client}]; ok {
		return level
	}
	return e.matrix.AudioSupport(codec, client)
}
