// Package config loads, validates, and normalizes storyreel's TOML
// configuration.
//
// Configuration is resolved from an explicit path, ~/.config/storyreel/
// config.toml, or a project-local storyreel.toml, in that order. Path fields
// are tilde-expanded and made absolute during load so the rest of the code
// never handles raw user input.
package config
