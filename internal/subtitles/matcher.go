package subtitles

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// subtitleExtensions are the companion file extensions considered during
// matching, lowercase with leading dot.
var subtitleExtensions = map[string]struct{}{
	".srt": {},
	".sub": {},
	".ass": {},
	".ssa": {},
	".vtt": {},
	".idx": {},
	".smi": {},
}

// formatByExtension maps a companion file extension to the subtitle
// format name used by the rating matrix.
var formatByExtension = map[string]string{
	".srt": "SRT",
	".sub": "VOBSUB",
	".ass": "ASS",
	".ssa": "SSA",
	".vtt": "VTT",
	".idx": "VOBSUB",
	".smi": "SMI",
}

// FormatForPath returns the matrix format name for an external subtitle
// file, or empty when the extension is not a subtitle extension.
func FormatForPath(path string) string {
	return formatByExtension[strings.ToLower(filepath.Ext(path))]
}

// IsSubtitleFile reports whether path has a recognized subtitle extension.
func IsSubtitleFile(path string) bool {
	_, ok := subtitleExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// FindCompanions returns subtitle files in the video's directory that
// appear to belong to it, sorted by filename length then alphabetically
// so the closest match comes first. The directory is not walked
// recursively. An unreadable directory yields an empty result.
func FindCompanions(videoPath string) []string {
	dir := filepath.Dir(videoPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	videoName := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))

	seen := make(map[string]struct{})
	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !IsSubtitleFile(name) {
			continue
		}
		if !nameMatches(videoName, strings.TrimSuffix(name, filepath.Ext(name))) {
			continue
		}
		full := filepath.Join(dir, name)
		if _, dup := seen[full]; dup {
			continue
		}
		seen[full] = struct{}{}
		matches = append(matches, full)
	}

	sort.Slice(matches, func(i, j int) bool {
		a, b := filepath.Base(matches[i]), filepath.Base(matches[j])
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
	return matches
}

var nameSeparators = []string{" - ", " -", "- ", " ", "-", "_"}

// nameMatches applies the ranked heuristics; the first rule that fires
// accepts the candidate.
func nameMatches(videoName, candidateName string) bool {
	video := strings.ToLower(videoName)
	candidate := strings.ToLower(candidateName)
	if video == "" || candidate == "" {
		return false
	}

	// Exact match, extension aside.
	if candidate == video {
		return true
	}
	// Language or modifier suffix: "name.eng", "name.forced".
	if strings.HasPrefix(candidate, video+".") {
		return true
	}
	// Separator-delimited suffix: "name - forced", "name_en".
	for _, sep := range nameSeparators {
		if strings.HasPrefix(candidate, video+sep) {
			return true
		}
	}
	// Substring containment, deliberately bounded rather than plain:
	// an occurrence that runs straight into another digit or letter is
	// rejected, or "video1" would claim every "video10" companion.
	if containsBounded(candidate, video) {
		return true
	}

	normVideo := normalizeName(video)
	normCandidate := normalizeName(candidate)
	if normVideo == "" || normCandidate == "" {
		return false
	}

	// Normalized prefix. When the candidate is longer, the character
	// after the prefix must be a separator so "video1" does not claim
	// "video10".
	if strings.HasPrefix(normCandidate, normVideo) {
		if len(normCandidate) == len(normVideo) {
			return true
		}
		if isSeparatorChar(normCandidate[len(normVideo)]) {
			return true
		}
	}

	// Normalized substring, only for names long enough to be meaningful.
	if len(videoName) >= 3 && containsBounded(normCandidate, normVideo) {
		return true
	}

	return false
}

// containsBounded reports whether needle occurs in haystack without the
// occurrence continuing into a character of the same class, so a
// trailing digit is not part of a longer number and a trailing letter is
// not part of a longer word.
func containsBounded(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	last := needle[len(needle)-1]
	for start := 0; ; {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			return false
		}
		end := start + idx + len(needle)
		if end >= len(haystack) || !sameClass(last, haystack[end]) {
			return true
		}
		start += idx + 1
	}
}

func sameClass(a, b byte) bool {
	return (isDigit(a) && isDigit(b)) || (isLetter(a) && isLetter(b))
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

// normalizeName lowercases and strips the filler characters release
// names disagree on.
func normalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch r {
		case ' ', '.', '_', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isSeparatorChar(c byte) bool {
	switch c {
	case '.', ' ', '_', '-', '(', '[':
		return true
	}
	return false
}
