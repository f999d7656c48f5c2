// Package config loads, normalizes, and validates strikeout configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts and XDG base directories), and reads TOML files. The Config type
// centralizes every knob the CLI needs: where the visited-file index and the
// link journal live, the hard-link overwrite policy, scan filters, and log
// output.
//
// Always obtain settings through this package so downstream code receives
// absolute paths and clear validation errors.
package config
