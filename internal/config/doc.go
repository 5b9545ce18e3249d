// Package config loads, normalizes, and validates dionysia configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PLEX_TOKEN and RADARR_API_KEY. The Config type centralizes every knob the
// CLI jobs need: service endpoints and credentials, retry and cache tuning,
// and the named list definitions that drive collection and list syncs.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
