// Package mediainfo invokes the external MediaInfo tool and parses its XML
// output into a canonical Properties record.
//
// Key types:
//   - Properties: extracted technical properties of one video file
//   - ProbeError: typed per-file failure with a Kind the scanner can
//     dispatch on (unavailable, failed, malformed, timeout, file missing)
//
// Primary entry point:
//   - Prober.Probe: executes the tool and returns parsed Properties
//
// The package also derives properties MediaInfo does not report directly:
// fast-start detection for MP4-family containers, HDR classification, bit
// depth inference, and codec tag validation.
package mediainfo
