// Package scanner orchestrates library scans: it enumerates video
// files, dispatches them onto a bounded worker pool, and drives each
// file through subtitle matching, probing, and rating before handing
// the outcome to the store.
//
// A scan moves Pending -> Running -> {Completed | Failed | Cancelled}.
// Per-file work is isolated: a file that cannot be probed becomes a
// failure record, a file that probes but fails sanity checks becomes a
// broken analysis, and neither aborts the scan. Progress counters live
// in a Tracker owned by the scan and are checkpointed to the store at
// status transitions, every Nth file, and on completion.
package scanner
