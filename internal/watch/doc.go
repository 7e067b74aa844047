// Package watch observes the configured library directories with
// fsnotify and triggers incremental scans after filesystem activity
// settles. Events are coalesced per library root with a debounce timer
// so a bulk copy produces one scan, not one per file.
package watch
