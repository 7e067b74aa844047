package mediainfo

import "strings"

// acceptedCodecTags lists the MP4-family sample entry tags players treat
// as valid for each codec. H.265 written with an unlisted tag (commonly
// hev1 from older muxers) will not start in Safari or on Apple devices
// even though the stream itself decodes fine.
var acceptedCodecTags = map[string]map[string]struct{}{
	"H.265": {"hvc1": {}, "hevc": {}},
	"H.264": {"avc1": {}, "avc3": {}, "h264": {}},
	"VP9":   {"vp09": {}},
	"AV1":   {"av01": {}},
}

var codecAliases = map[string]string{
	"H265": "H.265",
	"HEVC": "H.265",
	"H264": "H.264",
	"AVC":  "H.264",
}

// ValidateCodecTag reports whether tag is an accepted sample entry tag
// for the given codec. Codecs without a known tag set always validate.
func ValidateCodecTag(codec, tag string) bool {
	key := strings.ToUpper(strings.TrimSpace(codec))
	if canonical, ok := codecAliases[key]; ok {
		key = canonical
	}
	accepted, ok := acceptedCodecTags[key]
	if !ok {
		return true
	}
	_, ok = accepted[strings.ToLower(strings.TrimSpace(tag))]
	return ok
}
