// Package config loads, normalizes, and validates maestro's TOML
// configuration.
//
// Configuration resolves from, in order: an explicit --config path, then
// ~/.config/maestro/config.toml, then ./maestro.toml, then built-in defaults.
// Loaded configs always come back normalized (paths expanded, blanks filled
// with defaults) and validated, so downstream code never re-checks values.
package config
