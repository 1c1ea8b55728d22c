// Package config loads, normalizes, and validates autovideo configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files and honours environment fallbacks such as XDG_CACHE_HOME. Command
// line flags are applied on top of the loaded Config by the CLI; everything
// else reads settings through this package so paths arrive absolute and log
// formats canonical.
package config
