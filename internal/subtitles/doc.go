// Package subtitles locates external subtitle files that belong to a
// video, using ranked filename heuristics. Matching is best-effort: the
// naming conventions in real libraries are too varied for exact rules,
// so false positives and negatives are tolerated.
package subtitles
