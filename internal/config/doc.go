// Package config loads, normalizes, and validates scribe configuration.
//
// Configuration lives in a TOML file (default ~/.config/scribe/config.toml).
// Missing values fall back to repository defaults, secrets may be supplied
// via environment variables, and all path fields are tilde-expanded before
// use.
package config
