package rating

import "sort"

// SupportLevel describes how well a client handles a codec or container.
type SupportLevel string

const (
	Supported   SupportLevel = "supported"
	Partial     SupportLevel = "partial"
	Unsupported SupportLevel = "unsupported"
)

// Profile tags group clients that share platform behavior beyond the
// per-codec entries, e.g. the Apple media stack's container rules.
const ProfileIOS = "ios"

// Matrix is the static support reference data. Video codec keys may be
// bit-depth qualified ("H.265 10-bit"); lookups fall back to the bare
// codec name. Subtitle support is keyed by format then container, since
// embedded subtitle playback depends on the container far more than on
// the client.
type Matrix struct {
	VideoCodecs     map[string]map[string]SupportLevel
	AudioCodecs     map[string]map[string]SupportLevel
	Containers      map[string]map[string]SupportLevel
	SubtitleFormats map[string]map[string]SupportLevel
	Profiles        map[string][]string
}

// Clients returns every client named anywhere in the matrix, sorted.
func (m *Matrix) Clients() []string {
	set := make(map[string]struct{})
	for _, section := range []map[string]map[string]SupportLevel{m.VideoCodecs, m.AudioCodecs, m.Containers} {
		for _, byClient := range section {
			for client := range byClient {
				set[client] = struct{}{}
			}
		}
	}
	clients := make([]string, 0, len(set))
	for client := range set {
		clients = append(clients, client)
	}
	sort.Strings(clients)
	return clients
}

// HasProfile reports whether client carries the given profile tag.
func (m *Matrix) HasProfile(client, tag string) bool {
	for _, t := range m.Profiles[client] {
		if t == tag {
			return true
		}
	}
	return false
}

// VideoSupport looks up video codec support, preferring the bit-depth
// qualified key over the bare codec name. Unknown codecs are treated as
// unsupported.
func (m *Matrix) VideoSupport(codec string, bitDepth int, client string) SupportLevel {
	if bitDepth > 8 {
		if level, ok := lookup(m.VideoCodecs, qualifiedCodecKey(codec, bitDepth), client); ok {
			return level
		}
	}
	if level, ok := lookup(m.VideoCodecs, codec, client); ok {
		return level
	}
	return Unsupported
}

// AudioSupport looks up audio codec support. Unknown codecs are partial
// rather than unsupported: audio is cheap to transcode and unknown
// formats are usually obscure rather than unplayable.
func (m *Matrix) AudioSupport(codec, client string) SupportLevel {
	if level, ok := lookup(m.AudioCodecs, codec, client); ok {
		return level
	}
	return Partial
}

// ContainerSupport looks up container support. Unknown containers are
// unsupported.
func (m *Matrix) ContainerSupport(container, client string) SupportLevel {
	if level, ok := lookup(m.Containers, container, client); ok {
		return level
	}
	return Unsupported
}

// SubtitleSupport looks up embedded subtitle support for a format inside
// a container.
func (m *Matrix) SubtitleSupport(format, container string) SupportLevel {
	if level, ok := m.SubtitleFormats[format][container]; ok {
		return level
	}
	return Unsupported
}

func lookup(section map[string]map[string]SupportLevel, key, client string) (SupportLevel, bool) {
	byClient, ok := section[key]
	if !ok {
		return "", false
	}
	level, ok := byClient[client]
	return level, ok
}
