package mediainfo

import (
	"encoding/xml"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

type xmlTrack struct {
	Type                    string `xml:"type,attr"`
	Format                  string `xml:"Format"`
	FormatProfile           string `xml:"Format_Profile"`
	CodecID                 string `xml:"CodecID"`
	FileSize                string `xml:"FileSize"`
	Duration                string `xml:"Duration"`
	DurationString3         string `xml:"Duration_String3"`
	Width                   string `xml:"Width"`
	Height                  string `xml:"Height"`
	FrameRate               string `xml:"FrameRate"`
	BitDepth                string `xml:"BitDepth"`
	Channels                string `xml:"Channels"`
	SamplingRate            string `xml:"SamplingRate"`
	BitRate                 string `xml:"BitRate"`
	Language                string `xml:"Language"`
	ColourPrimaries         string `xml:"colour_primaries"`
	TransferCharacteristics string `xml:"transfer_characteristics"`
	MatrixCoefficients      string `xml:"matrix_coefficients"`
}

type xmlMedia struct {
	Tracks []xmlTrack `xml:"track"`
}

// xmlDocument tolerates both a <MediaInfo><media>... wrapper and a bare
// <media> root, with or without namespaces.
type xmlDocument struct {
	XMLName xml.Name
	Media   xmlMedia   `xml:"media"`
	Tracks  []xmlTrack `xml:"track"`
}

func (d xmlDocument) tracks() []xmlTrack {
	if len(d.Media.Tracks) > 0 {
		return d.Media.Tracks
	}
	return d.Tracks
}

// parseOutput converts raw MediaInfo XML into Properties.
func parseOutput(path string, sizeBytes int64, data []byte) (Properties, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Properties{}, errors.New("empty probe output")
	}

	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return Properties{}, fmt.Errorf("decode probe output: %w", err)
	}

	root := strings.ToLower(doc.XMLName.Local)
	if root != "mediainfo" && root != "media" {
		return Properties{}, fmt.Errorf("unrecognized root element %q", doc.XMLName.Local)
	}
	tracks := doc.tracks()
	if len(tracks) == 0 {
		return Properties{}, errors.New("no track elements in probe output")
	}

	var general, video *xmlTrack
	var audioTracks, textTracks []xmlTrack
	for i := range tracks {
		track := &tracks[i]
		switch strings.ToLower(track.Type) {
		case "general":
			if general == nil {
				general = track
			}
		case "video":
			if video == nil {
				video = track
			}
		case "audio":
			audioTracks = append(audioTracks, *track)
		case "text":
			textTracks = append(textTracks, *track)
		}
	}

	props := Properties{
		Path:            path,
		SizeBytes:       sizeBytes,
		CodecTagCorrect: true,
	}
	if general != nil {
		props.Container = normalizeContainer(general.Format, filepath.Ext(path))
		if size := parseIntField(general.FileSize); size > 0 && props.SizeBytes <= 0 {
			props.SizeBytes = int64(size)
		}
	}
	props.DurationSeconds = durationSeconds(general, video)

	if video != nil {
		props.VideoCodec = normalizeVideoCodec(video.Format)
		props.VideoCodecTag = strings.ToLower(strings.TrimSpace(video.CodecID))
		props.Width = parseIntField(video.Width)
		props.Height = parseIntField(video.Height)
		props.FrameRate = parseFloatField(video.FrameRate)
		props.BitDepth = bitDepth(video)
		props.HDR, props.HDRFormat = classifyHDR(video)
		if IsMP4Family(props.Container) {
			props.CodecTagCorrect = ValidateCodecTag(props.VideoCodec, props.VideoCodecTag)
		}
	}

	for _, track := range audioTracks {
		props.AudioTracks = append(props.AudioTracks, AudioTrack{
			Codec:       normalizeAudioCodec(track.Format),
			Channels:    parseIntField(track.Channels),
			SampleRate:  parseIntField(track.SamplingRate),
			BitrateKbps: parseIntField(track.BitRate) / 1000,
			Language:    strings.TrimSpace(track.Language),
		})
	}
	for _, track := range textTracks {
		props.SubtitleTracks = append(props.SubtitleTracks, SubtitleTrack{
			Format:   normalizeSubtitleFormat(track.Format, track.CodecID),
			Language: strings.TrimSpace(track.Language),
			Embedded: true,
		})
	}

	return props, nil
}

// durationSeconds tries, in order: the container-level Duration field
// (milliseconds), the formatted duration string, then the video track's
// duration fields. All failing, it returns 0 and the caller treats the
// file as suspect.
func durationSeconds(general, video *xmlTrack) float64 {
	for _, track := range []*xmlTrack{general, video} {
		if track == nil {
			continue
		}
		if ms := parseFloatField(track.Duration); ms > 0 {
			return ms / 1000
		}
		if secs := parseDurationString(track.DurationString3); secs > 0 {
			return secs
		}
	}
	return 0
}

// parseDurationString parses "HH:MM:SS.mmm" into seconds.
func parseDurationString(value string) float64 {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 3 {
		return 0
	}
	hours, err1 := strconv.Atoi(parts[0])
	minutes, err2 := strconv.Atoi(parts[1])
	seconds, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0
	}
	return float64(hours)*3600 + float64(minutes)*60 + seconds
}

// bitDepth returns the explicit bit depth when present, otherwise infers
// 10-bit from the codec profile or colour primaries, defaulting to 8.
func bitDepth(video *xmlTrack) int {
	if depth := parseIntField(video.BitDepth); depth > 0 {
		return depth
	}
	hints := strings.ToLower(video.Format + " " + video.FormatProfile)
	primaries := strings.ToLower(video.ColourPrimaries)
	if strings.Contains(hints, "10") || strings.Contains(primaries, "2020") {
		return 10
	}
	return 8
}

// classifyHDR assigns at most one HDR label; first match wins.
func classifyHDR(video *xmlTrack) (bool, string) {
	transfer := strings.ToLower(video.TransferCharacteristics)
	primaries := strings.ToLower(video.ColourPrimaries)
	matrix := strings.ToLower(video.MatrixCoefficients)

	switch {
	case strings.Contains(transfer, "pq") || strings.Contains(transfer, "2084") || strings.Contains(primaries, "2020"):
		return true, "HDR10"
	case strings.Contains(transfer, "hlg"):
		return true, "HLG"
	case strings.Contains(primaries, "dolby") || strings.Contains(matrix, "dolby"):
		return true, "Dolby Vision"
	default:
		return false, ""
	}
}

func normalizeContainer(format, ext string) string {
	ext = strings.ToLower(ext)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "matroska":
		return "MKV"
	case "webm":
		return "WEBM"
	case "avi":
		return "AVI"
	case "mpeg-ts", "bdav":
		return "TS"
	case "mpeg-ps":
		return "MPEG"
	case "flash video":
		return "FLV"
	case "windows media":
		return "WMV"
	case "mpeg-4", "quicktime":
		switch ext {
		case ".m4v":
			return "M4V"
		case ".mov":
			return "MOV"
		default:
			return "MP4"
		}
	case "":
		return strings.ToUpper(strings.TrimPrefix(ext, "."))
	default:
		return strings.ToUpper(strings.TrimSpace(format))
	}
}

func normalizeVideoCodec(format string) string {
	switch strings.ToUpper(strings.TrimSpace(format)) {
	case "HEVC":
		return "H.265"
	case "AVC":
		return "H.264"
	case "AV1", "AOMEDIA VIDEO 1":
		return "AV1"
	case "VP9":
		return "VP9"
	case "VP8":
		return "VP8"
	case "MPEG-4 VISUAL", "XVID", "DIVX":
		return "MPEG-4"
	case "MPEG VIDEO":
		return "MPEG-2"
	case "VC-1":
		return "VC-1"
	default:
		return strings.TrimSpace(format)
	}
}

func normalizeAudioCodec(format string) string {
	switch strings.ToUpper(strings.TrimSpace(format)) {
	case "AC-3":
		return "AC3"
	case "E-AC-3":
		return "EAC3"
	case "MLP FBA":
		return "TrueHD"
	case "DTS XLL", "DTS XLL X":
		return "DTS-HD"
	case "MPEG AUDIO":
		return "MP3"
	default:
		return strings.TrimSpace(format)
	}
}

func normalizeSubtitleFormat(format, codecID string) string {
	switch strings.ToUpper(strings.TrimSpace(format)) {
	case "UTF-8":
		return "SRT"
	case "ASS":
		return "ASS"
	case "SSA":
		return "SSA"
	case "PGS":
		return "PGS"
	case "VOBSUB":
		return "VOBSUB"
	case "TIMED TEXT":
		return "MOV_TEXT"
	case "":
		return strings.ToUpper(strings.TrimSpace(codecID))
	default:
		return strings.ToUpper(strings.TrimSpace(format))
	}
}

// parseIntField parses numeric fields, tolerating embedded spaces and
// trailing unit text (e.g. "1 920" or "48000 Hz").
func parseIntField(value string) int {
	cleaned := numericPrefix(strings.ReplaceAll(value, " ", ""))
	if cleaned == "" {
		return 0
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}
	return n
}

func parseFloatField(value string) float64 {
	cleaned := numericPrefix(strings.ReplaceAll(value, " ", ""))
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}

func numericPrefix(value string) string {
	end := 0
	for end < len(value) {
		c := value[end]
		if (c >= '0' && c <= '9') || c == '.' || (end == 0 && c == '-') {
			end++
			continue
		}
		break
	}
	return value[:end]
}
