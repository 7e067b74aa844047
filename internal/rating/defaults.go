package rating

import "fmt"

func qualifiedCodecKey(codec string, bitDepth int) string {
	return fmt.Sprintf("%s %d-bit", codec, bitDepth)
}

// all builds a client→level row with one level for every default client.
func all(level SupportLevel) map[string]SupportLevel {
	row := make(map[string]SupportLevel, len(defaultClients))
	for _, client := range defaultClients {
		row[client] = level
	}
	return row
}

// allExcept builds a row defaulting to base, with the listed exceptions.
func allExcept(base SupportLevel, exceptions map[string]SupportLevel) map[string]SupportLevel {
	row := all(base)
	for client, level := range exceptions {
		row[client] = level
	}
	return row
}

var defaultClients = []string{
	"android",
	"androidtv",
	"appletv",
	"chrome",
	"edge",
	"firefox",
	"ios",
	"kodi",
	"roku",
	"safari",
}

// DefaultMatrix returns the built-in support reference data, current as
// of mid-2025 client releases. Callers treat it as read-only.
func DefaultMatrix() *Matrix {
	return &Matrix{
		VideoCodecs: map[string]map[string]SupportLevel{
			"H.264": all(Supported),
			"H.264 10-bit": allExcept(Unsupported, map[string]SupportLevel{
				"kodi":      Supported,
				"androidtv": Partial,
			}),
			"H.265": allExcept(Supported, map[string]SupportLevel{
				"chrome":  Partial,
				"edge":    Partial,
				"firefox": Unsupported,
				"android": Partial,
			}),
			"H.265 10-bit": allExcept(Supported, map[string]SupportLevel{
				"chrome":  Partial,
				"edge":    Partial,
				"firefox": Unsupported,
				"android": Partial,
			}),
			"VP9": allExcept(Supported, map[string]SupportLevel{
				"ios":     Partial,
				"appletv": Unsupported,
				"safari":  Partial,
				"roku":    Partial,
			}),
			"AV1": allExcept(Partial, map[string]SupportLevel{
				"chrome":    Supported,
				"edge":      Supported,
				"firefox":   Supported,
				"android":   Supported,
				"androidtv": Supported,
				"kodi":      Supported,
				"appletv":   Unsupported,
				"roku":      Unsupported,
			}),
			"VP8": allExcept(Supported, map[string]SupportLevel{
				"ios":     Unsupported,
				"appletv": Unsupported,
				"safari":  Unsupported,
				"roku":    Unsupported,
			}),
			"MPEG-2": allExcept(Unsupported, map[string]SupportLevel{
				"kodi":      Supported,
				"androidtv": Partial,
			}),
			"MPEG-4": allExcept(Unsupported, map[string]SupportLevel{
				"kodi":      Supported,
				"androidtv": Partial,
				"android":   Partial,
			}),
			"VC-1": allExcept(Unsupported, map[string]SupportLevel{
				"kodi": Supported,
				"edge": Partial,
			}),
		},
		AudioCodecs: map[string]map[string]SupportLevel{
			"AAC": all(Supported),
			"MP3": all(Supported),
			"AC3": allExcept(Supported, map[string]SupportLevel{
				"chrome":  Unsupported,
				"firefox": Unsupported,
				"android": Partial,
			}),
			"EAC3": allExcept(Supported, map[string]SupportLevel{
				"chrome":  Unsupported,
				"firefox": Unsupported,
				"android": Partial,
			}),
			"DTS": allExcept(Unsupported, map[string]SupportLevel{
				"kodi":      Supported,
				"androidtv": Supported,
			}),
			"DTS-HD": allExcept(Unsupported, map[string]SupportLevel{
				"kodi":      Supported,
				"androidtv": Partial,
			}),
			"TrueHD": allExcept(Unsupported, map[string]SupportLevel{
				"kodi":      Supported,
				"androidtv": Partial,
			}),
			"FLAC": allExcept(Supported, map[string]SupportLevel{
				"ios":     Partial,
				"appletv": Partial,
				"safari":  Partial,
				"roku":    Partial,
			}),
			"Opus": allExcept(Supported, map[string]SupportLevel{
				"ios":     Unsupported,
				"appletv": Unsupported,
				"safari":  Partial,
				"roku":    Partial,
			}),
			"Vorbis": allExcept(Partial, map[string]SupportLevel{
				"chrome":    Supported,
				"firefox":   Supported,
				"edge":      Supported,
				"android":   Supported,
				"androidtv": Supported,
				"kodi":      Supported,
				"ios":       Unsupported,
				"appletv":   Unsupported,
				"safari":    Unsupported,
			}),
			"PCM": allExcept(Partial, map[string]SupportLevel{
				"kodi": Supported,
			}),
		},
		Containers: map[string]map[string]SupportLevel{
			"MP4": all(Supported),
			"M4V": all(Supported),
			"MOV": allExcept(Partial, map[string]SupportLevel{
				"ios":     Supported,
				"appletv": Supported,
				"safari":  Supported,
				"kodi":    Supported,
			}),
			"MKV": allExcept(Supported, map[string]SupportLevel{
				"chrome":  Partial,
				"edge":    Partial,
				"firefox": Unsupported,
				"safari":  Unsupported,
				"ios":     Unsupported,
				"appletv": Unsupported,
			}),
			"WEBM": allExcept(Supported, map[string]SupportLevel{
				"ios":     Unsupported,
				"appletv": Unsupported,
				"safari":  Partial,
				"roku":    Partial,
			}),
			"AVI": allExcept(Unsupported, map[string]SupportLevel{
				"kodi":      Supported,
				"androidtv": Partial,
			}),
			"TS": allExcept(Unsupported, map[string]SupportLevel{
				"kodi":      Supported,
				"androidtv": Partial,
				"appletv":   Partial,
			}),
			"WMV": allExcept(Unsupported, map[string]SupportLevel{
				"kodi": Supported,
				"edge": Partial,
			}),
			"FLV": allExcept(Unsupported, map[string]SupportLevel{
				"kodi": Partial,
			}),
		},
		SubtitleFormats: map[string]map[string]SupportLevel{
			"SRT": {
				"MKV": Supported, "WEBM": Partial,
				"MP4": Partial, "M4V": Partial, "MOV": Partial,
			},
			"ASS": {
				"MKV": Supported,
				"MP4": Unsupported, "M4V": Unsupported, "MOV": Unsupported,
			},
			"SSA": {
				"MKV": Supported,
				"MP4": Unsupported, "M4V": Unsupported, "MOV": Unsupported,
			},
			"PGS": {
				"MKV": Partial,
				"MP4": Unsupported, "M4V": Unsupported, "MOV": Unsupported,
			},
			"VOBSUB": {
				"MKV": Partial,
				"MP4": Unsupported, "M4V": Unsupported, "MOV": Unsupported,
			},
			"MOV_TEXT": {
				"MP4": Supported, "M4V": Supported, "MOV": Supported,
				"MKV": Unsupported,
			},
			"VTT": {
				"WEBM": Supported,
				"MKV":  Partial,
				"MP4":  Partial, "M4V": Partial, "MOV": Partial,
			},
		},
		Profiles: map[string][]string{
			"ios":     {ProfileIOS},
			"appletv": {ProfileIOS},
			"safari":  {ProfileIOS},
		},
	}
}
