// Package store persists scans, per-file analyses, and failure records
// in SQLite. It is the single source of truth for scan state: the
// orchestrator mutates in-memory counters and checkpoints them here at
// status transitions, every Nth file, and on completion.
package store
