// Package api defines the JSON DTOs shared by the HTTP surface and the
// CLI client, plus the read/control service that maps them onto the
// store and the scan orchestrator.
package api
