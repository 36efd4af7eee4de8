// Package config loads, normalizes, and validates refbuild configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the REFBUILD_TOKEN environment
// fallback for the transfer credential. Always obtain settings through this
// package so downstream code receives sanitized paths and clear validation
// errors.
package config
