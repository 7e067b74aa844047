package mediainfo

import (
	"errors"
	"fmt"
)

// ErrorKind classifies per-file probe failures so the scanner can record
// them without string matching.
type ErrorKind string

const (
	// KindUnavailable means the external tool could not be started.
	KindUnavailable ErrorKind = "probe_unavailable"
	// KindFailed means the tool ran but exited non-zero.
	KindFailed ErrorKind = "probe_failed"
	// KindMalformed means the tool output could not be parsed.
	KindMalformed ErrorKind = "probe_malformed"
	// KindTimeout means the per-file probe budget expired.
	KindTimeout ErrorKind = "timeout"
	// KindFileMissing means the file vanished between enumeration and probing.
	KindFileMissing ErrorKind = "file_missing"
)

// ProbeError is the tagged outcome for a file that could not be probed.
type ProbeError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

func newProbeError(kind ErrorKind, path string, err error) *ProbeError {
	return &ProbeError{Kind: kind, Path: path, Err: err}
}

// KindOf extracts the ErrorKind from err, defaulting to KindFailed for
// errors that did not originate in this package.
func KindOf(err error) ErrorKind {
	var pe *ProbeError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindFailed
}
