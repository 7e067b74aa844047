// Command reelcheck is the CLI for the reelcheck daemon: it starts and
// cancels library scans, inspects results and compatibility reports,
// and manages configuration. Most commands talk to a running daemon
// over its HTTP API.
package main
