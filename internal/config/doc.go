// Package config loads, normalizes, and validates runarr configuration.
//
// It supplies repository defaults, expands tilde paths, reads TOML files, and
// honours the COMICVINE_API_KEY environment fallback. Always obtain settings
// through this package so downstream code receives sanitized paths, canonical
// log formats, and clear validation errors.
package config
