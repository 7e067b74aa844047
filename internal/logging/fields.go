package logging

// Standardized attribute keys. Keeping these in one place makes log
// filtering predictable across the daemon, scanner, and CLI surfaces.
const (
	FieldComponent = "component"
	FieldScanID    = "scan_id"
	FieldPath      = "path"
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
)
