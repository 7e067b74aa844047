// Package daemon coordinates the long-running reelcheck process.
//
// It wires configuration, the analysis store, the scan orchestrator,
// the library watcher, and the maintenance scheduler into a single
// lifecycle with flock-based locking to prevent multiple instances,
// and serves the HTTP API the CLI talks to.
//
// Keep orchestration logic here: scanning, probing, and rating live in
// their respective packages while the daemon focuses on startup,
// shutdown, and high level coordination.
package daemon
