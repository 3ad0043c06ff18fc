// Package config loads, normalizes, and validates kraken configuration.
//
// Values are layered: built-in defaults, then an optional TOML file, then a
// .env file in the working directory and KRAKEN_* environment variables.
// Command-line flags are applied on top by the caller.
package config
