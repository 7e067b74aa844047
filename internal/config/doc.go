// Package config loads, validates, and defaults the reelcheck TOML
// configuration. Path fields are expanded (~ and relative paths) during
// Load so every other package can treat them as absolute.
package config
