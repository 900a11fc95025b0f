// Package config loads, normalizes, and validates the rovercam TOML
// configuration. Paths are tilde-expanded and made absolute during load so
// the rest of the codebase never deals with relative or unexpanded values.
package config
