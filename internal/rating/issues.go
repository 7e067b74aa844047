package rating

import (
	"fmt"

	"reelcheck/internal/mediainfo"
)

// label maps the direct-play and remux counts onto Optimal/Good/Poor
// using the codec-specific thresholds.
func (e *Engine) label(props mediainfo.Properties, directPlay, remux int) string {
	ts := e.thresholdsFor(props.VideoCodec, props.BitDepth)
	switch {
	case directPlay >= ts.optimal:
		return LabelOptimal
	case directPlay >= ts.goodDirect, directPlay+remux >= ts.goodCombined:
		return LabelGood
	default:
		return LabelPoor
	}
}

// appendAdvisories runs the deterministic issue/recommendation pass over
// props and derives the penalty-based score. Items are only ever added,
// in a fixed order: container, video codec, codec tag, HDR, audio,
// subtitles, fast start, bitrate.
func (e *Engine) appendAdvisories(result *Result, props mediainfo.Properties) {
	score := 100

	if e.anyUnsupported(func(client string) SupportLevel {
		return e.containerSupport(props.Container, client)
	}) {
		result.Issues = append(result.Issues, fmt.Sprintf("%s container is unsupported on some clients", props.Container))
		result.Recommendations = append(result.Recommendations, "Remux to MP4 for the broadest container compatibility")
		score -= e.cfg.PenaltyUnsupported
	}

	if e.anyUnsupported(func(client string) SupportLevel {
		return e.videoSupport(props.VideoCodec, props.BitDepth, client)
	}) {
		result.Issues = append(result.Issues, fmt.Sprintf("%s video requires transcoding on some clients", props.VideoCodec))
		result.Recommendations = append(result.Recommendations, "Re-encode to H.264 8-bit for universal direct play")
		score -= e.cfg.PenaltyUnsupported
	}

	if !props.CodecTagCorrect {
		result.Issues = append(result.Issues, fmt.Sprintf("video codec tag %q is not accepted by Apple players", props.VideoCodecTag))
		result.Recommendations = append(result.Recommendations, "Rewrite the codec tag (e.g. hev1 to hvc1) without re-encoding")
	}

	if props.HDR {
		result.Issues = append(result.Issues, fmt.Sprintf("%s content tone-maps poorly on SDR-only clients", hdrLabel(props)))
		score -= e.cfg.PenaltyHDR
	}

	audioPenalized := false
	for _, track := range props.AudioTracks {
		if e.anyUnsupported(func(client string) SupportLevel {
			return e.audioSupport(track.Codec, client)
		}) {
			result.Issues = append(result.Issues, fmt.Sprintf("%s audio is unsupported on some clients", track.Codec))
			if !audioPenalized {
				result.Recommendations = append(result.Recommendations, "Add an AAC stereo fallback track")
				score -= e.cfg.PenaltyUnsupported
				audioPenalized = true
			}
		}
	}
	if props.MaxAudioChannels() > 2 {
		result.Issues = append(result.Issues, fmt.Sprintf("%d-channel audio downmixes on stereo clients", props.MaxAudioChannels()))
		score -= e.cfg.PenaltySurround
	}

	if mediainfo.IsMP4Family(props.Container) {
		for _, track := range props.SubtitleTracks {
			if track.Embedded && track.Format != "MOV_TEXT" {
				result.Issues = append(result.Issues, fmt.Sprintf("%s subtitles embedded in %s are widely unsupported", track.Format, props.Container))
				result.Recommendations = append(result.Recommendations, "Extract embedded subtitles to external .srt files")
				break
			}
		}

		if !props.FastStart {
			result.Issues = append(result.Issues, "moov atom is at the end of the file; streaming start is delayed")
			result.Recommendations = append(result.Recommendations, "Remux with fast start enabled (moov before mdat)")
			score -= e.cfg.PenaltyNoFastStart
		}
	}

	if threshold := e.cfg.BitrateThreshold; threshold > 0 {
		if bitrate := props.VideoBitrateMbps(); bitrate > threshold {
			result.Issues = append(result.Issues, fmt.Sprintf("overall bitrate %.1f Mbps exceeds the %.0f Mbps streaming threshold", bitrate, threshold))
			score -= e.cfg.PenaltyHighBitrate
		}
	}

	if score < 0 {
		score = 0
	}
	result.Score = score
}

// anyUnsupported reports whether the lookup yields Unsupported for any
// enabled client.
func (e *Engine) anyUnsupported(lookup func(client string) SupportLevel) bool {
	for _, client := range e.enabled {
		if lookup(client) == Unsupported {
			return true
		}
	}
	return false
}
