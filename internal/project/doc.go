// Package project persists story projects and their scenes in SQLite and
// ingests project manifests from TOML or YAML files.
package project
