// Package config loads, normalizes, and validates partwise configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and validates every knob the CLI needs:
// the datasets root, extraction policy, and logging output.
//
// Always obtain settings through this package so downstream code receives
// sanitized absolute paths, canonical log formats, and clear validation
// errors.
package config
