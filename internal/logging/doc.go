// Package logging builds the slog loggers used across reelcheck and
// provides small attribute helpers so call sites stay terse.
//
// Two output formats are supported: a human-oriented console format and
// line-delimited JSON. Component loggers are derived with
// NewComponentLogger so every record carries a stable "component" field.
package logging
