// Package rating computes playback compatibility for a media file
// across a set of clients. Evaluate is a pure function over extracted
// media properties and a support matrix: no I/O, deterministic output
// for identical input.
//
// Each client receives a disposition (direct play, remux, transcode)
// that only worsens as evaluation steps apply. The aggregate rating is
// the raw count of direct-play clients, labeled against codec-specific
// thresholds derived from how many clients could support the codec at
// all.
package rating
